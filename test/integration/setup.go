package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/slate-notes/api/internal/adapters/handler/http"
	repo "github.com/slate-notes/api/internal/adapters/repository/postgres"
	"github.com/slate-notes/api/internal/adapters/storage/local"
	"github.com/slate-notes/api/internal/core/services"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	DBContainer testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	require.NoError(t, applyMigrations(db))

	userRepo := repo.NewUserRepository(db)
	authRepo := repo.NewAuthRepository(db)
	noteRepo := repo.NewNoteRepository(db)
	taskRepo := repo.NewTaskRepository(db)
	folderRepo := repo.NewFolderRepository(db)
	tagRepo := repo.NewTagRepository(db)

	uploadDir := t.TempDir()
	fileStorage, err := local.New(uploadDir, "/uploads")
	require.NoError(t, err)

	authSvc := services.NewAuthService(userRepo, authRepo, services.AuthConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, zerolog.Nop())

	router := handler.NewHandler(handler.Handlers{
		Auth:   handler.NewAuthHandler(authSvc, services.NewUserService(userRepo)),
		Note:   handler.NewNoteHandler(services.NewNoteService(noteRepo, tagRepo)),
		Task:   handler.NewTaskHandler(services.NewTaskService(taskRepo, noteRepo)),
		Folder: handler.NewFolderHandler(services.NewFolderService(folderRepo)),
		Tag:    handler.NewTagHandler(services.NewTagService(tagRepo)),
		Upload: handler.NewUploadHandler(services.NewUploadService(fileStorage)),
	}, authSvc, uploadDir, []string{"*"})

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

type apiResponse struct {
	Status int
	Body   struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
}

func (app *TestApp) do(t *testing.T, method, path, token string, payload any) apiResponse {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, app.Server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := apiResponse{Status: resp.StatusCode}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out.Body))
	return out
}

func decodeData(t *testing.T, resp apiResponse, target any) {
	t.Helper()
	require.True(t, resp.Body.Success, "expected a success envelope, got error %q", resp.Body.Error.Message)
	require.NoError(t, json.Unmarshal(resp.Body.Data, target))
}

var userSeq atomic.Int64

type authSession struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

func (app *TestApp) signupUser(t *testing.T) authSession {
	t.Helper()

	email := fmt.Sprintf("user-%d@example.com", userSeq.Add(1))
	resp := app.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.Status)

	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decodeData(t, resp, &data)

	return authSession{
		UserID:       data.User.ID,
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
	}
}
