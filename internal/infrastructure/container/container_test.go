package container

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alchemorsel/nutrition/internal/infrastructure/http/server"
	"github.com/alchemorsel/nutrition/internal/ports/inbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestModule_Validates(t *testing.T) {
	err := fx.ValidateApp(Module, WithConfigPath(""), fx.NopLogger)

	assert.NoError(t, err)
}

func TestModule_StartsAndStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  log_level: error
server:
  host: 127.0.0.1
  port: 18089
database:
  driver: sqlite
  database: ":memory:"
rate_limit:
  enable: false
`), 0o600))

	var (
		srv     *server.Server
		service inbound.NutritionService
	)
	app := fx.New(Module, WithConfigPath(path), fx.NopLogger, fx.Populate(&srv, &service))
	require.NoError(t, app.Err())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx))

	resp, err := http.Get("http://127.0.0.1:18089/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, service)

	require.NoError(t, app.Stop(ctx))
}
