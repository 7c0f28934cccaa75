package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydra-warm/hydra-warm/internal/config"
	"github.com/hydra-warm/hydra-warm/internal/logging"
	"github.com/hydra-warm/hydra-warm/internal/warmer"
)

func TestRegisterResolveAndList(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(New("secondary", "/m/s", nil, nil)))
	require.NoError(t, r.Register(New(" Default ", "/m/d", nil, nil)))

	m, ok := r.Resolve("DEFAULT")
	require.True(t, ok, "resolve should be case-insensitive")
	assert.Equal(t, "default", m.Name())

	_, ok = r.ResolveManager("ghost")
	assert.False(t, ok)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "default", list[0].Name())
	assert.Equal(t, []string{"secondary", "default"}, r.Names())
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(New("default", "", nil, nil)))
	assert.Error(t, r.Register(New("DEFAULT", "", nil, nil)))
	assert.Error(t, r.Register(New("  ", "", nil, nil)))
	assert.Error(t, r.Register(nil))
	assert.Panics(t, func() { r.MustRegister(New("default", "", nil, nil)) })
}

func TestFromConfigWarmsEveryListedManager(t *testing.T) {
	mapping, err := filepath.Abs(filepath.Join("..", "metadata", "testdata", "mapping"))
	require.NoError(t, err)
	hydratorDir := filepath.Join(t.TempDir(), "cache", "hydrators")

	cfg := &config.Config{
		Global: config.GlobalConfig{
			HydratorDir:      hydratorDir,
			HydratorDirMode:  config.DefaultDirMode,
			DocumentManagers: []string{"default", "secondary"},
		},
		Managers: []config.ManagerConfig{
			{Name: "default", MappingDir: mapping, Package: "hydrators"},
			{Name: "secondary", MappingDir: mapping, Package: "reporting"},
		},
	}

	registry, err := FromConfig(cfg, BuildOptions{Logger: logging.Discard()})
	require.NoError(t, err)

	w, err := warmer.NewHydratorCacheWarmer(warmer.HydratorOptions{
		HydratorDir:      cfg.Global.HydratorDir,
		DirMode:          cfg.Global.HydratorDirMode.Perm(),
		DocumentManagers: cfg.Global.DocumentManagers,
		Registry:         registry,
		Logger:           logging.Discard(),
	})
	require.NoError(t, err)
	require.NoError(t, w.WarmUp(context.Background(), ""))

	for _, name := range []string{"default", "secondary"} {
		for _, file := range []string{"user_hydrator.go", "product_hydrator.go", "category_hydrator.go", "hydrate_helpers.go"} {
			_, err := os.Stat(filepath.Join(hydratorDir, name, file))
			assert.NoError(t, err, "%s/%s", name, file)
		}
	}

	secondary, _ := registry.Resolve("secondary")
	src, err := os.ReadFile(filepath.Join(hydratorDir, "secondary", "user_hydrator.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package reporting")

	artifacts, err := secondary.Hydrators().Artifacts(context.Background())
	require.NoError(t, err)
	assert.Len(t, artifacts, 4)

	report, ok := w.LastReport()
	require.True(t, ok)
	require.Len(t, report.Managers, 2)
	assert.Equal(t, 3, report.Managers[0].Classes)
}

func TestFromConfigLazyPathWhenAutoGenerate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/mapping/user.yml", []byte("name: User\nfields:\n  - name: id\n    type: id\n"), 0o644))

	cfg := &config.Config{
		Global: config.GlobalConfig{
			HydratorDir:                 "/hydrators",
			AutoGenerateHydratorClasses: true,
		},
		Managers: []config.ManagerConfig{{Name: "default", MappingDir: "/mapping", Package: "hydrators"}},
	}
	registry, err := FromConfig(cfg, BuildOptions{FS: fsys, Logger: logging.Discard()})
	require.NoError(t, err)

	m, ok := registry.Resolve("default")
	require.True(t, ok)
	user, err := m.Metadata().Metadata(context.Background(), "User")
	require.NoError(t, err)

	entry, err := m.Hydrators().Ensure(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "/hydrators/default/user_hydrator.go", entry.FilePath)
}
