package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hfguide/hfguide/pkg/adapter"
	"github.com/hfguide/hfguide/pkg/repository"
	"github.com/hfguide/hfguide/pkg/usecase/qa"
	"github.com/hfguide/hfguide/pkg/utils/logging"
)

// config holds configuration values
type config struct {
	logLevel   string
	configFile string

	// Repository
	project  string
	database string

	// Gemini
	geminiProject   string
	geminiLocation  string
	generativeModel string
	embeddingModel  string
	dimension       int64

	// Vector index
	milvusAddr string
	collection string
	metricType string
	nlist      int64
	nprobe     int64
}

// fileConfig mirrors config for the optional YAML configuration file. Flags
// and environment variables take precedence over file values.
type fileConfig struct {
	Project  string `yaml:"project"`
	Database string `yaml:"database"`

	Gemini struct {
		Project         string `yaml:"project"`
		Location        string `yaml:"location"`
		GenerativeModel string `yaml:"generative_model"`
		EmbeddingModel  string `yaml:"embedding_model"`
		Dimension       int64  `yaml:"dimension"`
	} `yaml:"gemini"`

	Milvus struct {
		Address    string `yaml:"address"`
		Collection string `yaml:"collection"`
		MetricType string `yaml:"metric_type"`
		NList      int64  `yaml:"nlist"`
		NProbe     int64  `yaml:"nprobe"`
	} `yaml:"milvus"`
}

// loadFile merges the YAML file into unset config fields.
func (cfg *config) loadFile() error {
	if cfg.configFile == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.configFile)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configFile))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configFile))
	}

	setString(&cfg.project, fc.Project)
	setString(&cfg.database, fc.Database)
	setString(&cfg.geminiProject, fc.Gemini.Project)
	setString(&cfg.geminiLocation, fc.Gemini.Location)
	setString(&cfg.generativeModel, fc.Gemini.GenerativeModel)
	setString(&cfg.embeddingModel, fc.Gemini.EmbeddingModel)
	setInt(&cfg.dimension, fc.Gemini.Dimension)
	setString(&cfg.milvusAddr, fc.Milvus.Address)
	setString(&cfg.collection, fc.Milvus.Collection)
	setString(&cfg.metricType, fc.Milvus.MetricType)
	setInt(&cfg.nlist, fc.Milvus.NList)
	setInt(&cfg.nprobe, fc.Milvus.NProbe)

	return nil
}

func setString(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func setInt(dst *int64, v int64) {
	if *dst == 0 && v != 0 {
		*dst = v
	}
}

// prepare merges the config file and installs the logger on the context.
// Called at the top of every command action.
func (cfg *config) prepare(ctx context.Context) (context.Context, error) {
	if err := cfg.loadFile(); err != nil {
		return ctx, err
	}

	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger), nil
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("HFGUIDE_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML configuration file",
			Sources:     cli.EnvVars("HFGUIDE_CONFIG"),
			Destination: &cfg.configFile,
		},
	}
}

// repoFlags returns flags for the patient record store
func repoFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
	}
}

// llmFlags returns flags for model configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "generative-model",
			Usage:       "Generative model name",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("HFGUIDE_GENERATIVE_MODEL"),
			Destination: &cfg.generativeModel,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Embedding model name",
			Value:       "gemini-embedding-001",
			Sources:     cli.EnvVars("HFGUIDE_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
		&cli.IntFlag{
			Name:        "dimension",
			Usage:       "Embedding dimensionality, must match the index schema",
			Value:       768,
			Sources:     cli.EnvVars("HFGUIDE_DIMENSION"),
			Destination: &cfg.dimension,
		},
	}
}

// indexFlags returns flags for the vector index with destination config
func indexFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "milvus-addr",
			Usage:       "Milvus server address (host:port)",
			Value:       "localhost:19530",
			Sources:     cli.EnvVars("MILVUS_ADDR"),
			Destination: &cfg.milvusAddr,
		},
		&cli.StringFlag{
			Name:        "collection",
			Usage:       "Milvus collection name",
			Value:       "hf_guideline",
			Sources:     cli.EnvVars("HFGUIDE_COLLECTION"),
			Destination: &cfg.collection,
		},
		&cli.StringFlag{
			Name:        "metric",
			Usage:       "Distance metric (L2, IP, COSINE)",
			Value:       "L2",
			Sources:     cli.EnvVars("HFGUIDE_METRIC"),
			Destination: &cfg.metricType,
		},
		&cli.IntFlag{
			Name:        "nlist",
			Usage:       "IVF_FLAT cluster count",
			Value:       64,
			Sources:     cli.EnvVars("HFGUIDE_NLIST"),
			Destination: &cfg.nlist,
		},
		&cli.IntFlag{
			Name:        "nprobe",
			Usage:       "Clusters probed per search",
			Value:       16,
			Sources:     cli.EnvVars("HFGUIDE_NPROBE"),
			Destination: &cfg.nprobe,
		},
	}
}

// newRepository creates a new patient record store
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.generativeModel),
		adapter.WithEmbeddingModel(cfg.embeddingModel),
		adapter.WithDimension(int(cfg.dimension)),
	)
}

// newIndex creates a new vector index client
func (cfg *config) newIndex(ctx context.Context) (adapter.VectorIndex, error) {
	if cfg.milvusAddr == "" {
		return nil, goerr.New("milvus-addr is required")
	}
	return adapter.NewMilvusIndex(ctx, adapter.MilvusConfig{
		Address:    cfg.milvusAddr,
		Collection: cfg.collection,
		Dimension:  int(cfg.dimension),
		MetricType: cfg.metricType,
		NList:      int(cfg.nlist),
		NProbe:     int(cfg.nprobe),
	})
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context, bucketName string) (adapter.Storage, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required")
	}

	storage, err := adapter.NewStorage(ctx, bucketName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newUseCase wires the QA pipeline from configured dependencies.
func (cfg *config) newUseCase(ctx context.Context, topK int64) (*qa.UseCase, repository.Repository, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, nil, err
	}

	index, err := cfg.newIndex(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := index.Load(ctx); err != nil {
		return nil, nil, err
	}

	uc := qa.New(repo, gemini, index, qa.WithTopK(int(topK)))
	return uc, repo, nil
}
