package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestLoadFileMergesUnsetValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := `
project: file-project
database: file-db
gemini:
  location: europe-west1
  dimension: 1536
milvus:
  address: milvus.internal:19530
  nprobe: 32
`
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))

	cfg := config{
		configFile: path,
		project:    "flag-project", // flags win over the file
	}
	gt.NoError(t, cfg.loadFile())

	gt.Equal(t, cfg.project, "flag-project")
	gt.Equal(t, cfg.database, "file-db")
	gt.Equal(t, cfg.geminiLocation, "europe-west1")
	gt.Equal(t, cfg.dimension, int64(1536))
	gt.Equal(t, cfg.milvusAddr, "milvus.internal:19530")
	gt.Equal(t, cfg.nprobe, int64(32))
}

func TestLoadFileMissing(t *testing.T) {
	cfg := config{configFile: "/no/such/file.yml"}
	gt.Error(t, cfg.loadFile())

	// No config file configured is fine.
	cfg = config{}
	gt.NoError(t, cfg.loadFile())
}
