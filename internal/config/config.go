// Package config defines the configuration model shared by every climate
// subcommand and loads it from defaults, an optional JSON or YAML file, a
// dotenv file and CLIMATE_* environment variables.
//
// Example (YAML, trimmed):
//
//	predict:
//	  input: https://example.org/official_climate_data.csv
//	  epochs: 50
//	export:
//	  dialect: postgres
//	  annual:
//	    escape: double
//	storage:
//	  kind: postgres
//	  dsn: postgres://climate@localhost/climate
package config

import (
	"time"

	"climate/internal/datasource/httpds"
	"climate/internal/model"
	"climate/internal/sqlgen"
)

// Config is the top-level configuration.
type Config struct {
	Job     Job     `mapstructure:"job" json:"job" yaml:"job"`
	Predict Predict `mapstructure:"predict" json:"predict" yaml:"predict"`
	Export  Export  `mapstructure:"export" json:"export" yaml:"export"`
	Storage Storage `mapstructure:"storage" json:"storage" yaml:"storage"`
	Metrics Metrics `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	Report  Report  `mapstructure:"report" json:"report" yaml:"report"`
	Serve   Serve   `mapstructure:"serve" json:"serve" yaml:"serve"`
}

// Job holds settings shared by all pipelines.
type Job struct {
	// Name labels metrics (Pushgateway job, Datadog namespace default).
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	// HTTP configures the client used for http(s) inputs.
	HTTP httpds.Config `mapstructure:"http" json:"http" yaml:"http"`
}

// Predict configures the prediction pipeline.
type Predict struct {
	Input       string `mapstructure:"input" json:"input" yaml:"input"`
	Output      string `mapstructure:"output" json:"output" yaml:"output"`
	TrainingLog string `mapstructure:"training_log" json:"training_log" yaml:"training_log"`

	FromYear int `mapstructure:"from_year" json:"from_year" yaml:"from_year"`
	ToYear   int `mapstructure:"to_year" json:"to_year" yaml:"to_year"`

	// Epochs of the final fit.
	Epochs    int     `mapstructure:"epochs" json:"epochs" yaml:"epochs"`
	TestSize  float64 `mapstructure:"test_size" json:"test_size" yaml:"test_size"`
	SplitSeed uint64  `mapstructure:"split_seed" json:"split_seed" yaml:"split_seed"`

	Search Search `mapstructure:"search" json:"search" yaml:"search"`
}

// Search configures the hyperparameter search.
type Search struct {
	MaxEpochs   int     `mapstructure:"max_epochs" json:"max_epochs" yaml:"max_epochs"`
	Factor      int     `mapstructure:"factor" json:"factor" yaml:"factor"`
	Split       float64 `mapstructure:"split" json:"split" yaml:"split"`
	FinalSplit  float64 `mapstructure:"final_split" json:"final_split" yaml:"final_split"`
	Parallelism int     `mapstructure:"parallelism" json:"parallelism" yaml:"parallelism"`
	Seed        uint64  `mapstructure:"seed" json:"seed" yaml:"seed"`

	Space model.Space        `mapstructure:"space" json:"space" yaml:"space"`
	Train model.TrainOptions `mapstructure:"train" json:"train" yaml:"train"`
}

// Hyperband builds the searcher described by s.
func (s Search) Hyperband() model.Hyperband {
	return model.Hyperband{
		Space:       s.Space,
		Train:       s.Train,
		MaxEpochs:   s.MaxEpochs,
		Factor:      s.Factor,
		SearchSplit: s.Split,
		FinalSplit:  s.FinalSplit,
		Parallelism: s.Parallelism,
		Seed:        s.Seed,
	}
}

// Export configures the SQL exporters.
type Export struct {
	// Dialect is mysql, postgres, sqlserver or sqlite.
	Dialect     string        `mapstructure:"dialect" json:"dialect" yaml:"dialect"`
	Tables      sqlgen.Tables `mapstructure:"tables" json:"tables" yaml:"tables"`
	Countries   Target        `mapstructure:"countries" json:"countries" yaml:"countries"`
	Annual      Target        `mapstructure:"annual" json:"annual" yaml:"annual"`
	Predictions Target        `mapstructure:"predictions" json:"predictions" yaml:"predictions"`
}

// Target is one exporter's files and quote escaping.
type Target struct {
	Input  string `mapstructure:"input" json:"input" yaml:"input"`
	Output string `mapstructure:"output" json:"output" yaml:"output"`
	// Escape is "double" or "backslash".
	Escape string `mapstructure:"escape" json:"escape" yaml:"escape"`
}

// Storage selects the database scripts are loaded into and reports read from.
type Storage struct {
	Kind           string        `mapstructure:"kind" json:"kind" yaml:"kind"`
	DSN            string        `mapstructure:"dsn" json:"dsn" yaml:"dsn"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout"`
	// Scripts are applied in order by "climate load" when no paths are given.
	Scripts []string `mapstructure:"scripts" json:"scripts" yaml:"scripts"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is none, pushgateway or datadog.
	Backend     string      `mapstructure:"backend" json:"backend" yaml:"backend"`
	Pushgateway Pushgateway `mapstructure:"pushgateway" json:"pushgateway" yaml:"pushgateway"`
	Datadog     Datadog     `mapstructure:"datadog" json:"datadog" yaml:"datadog"`
}

// Pushgateway configures the Prometheus Pushgateway backend.
type Pushgateway struct {
	URL string `mapstructure:"url" json:"url" yaml:"url"`
}

// Datadog configures the DogStatsD backend.
type Datadog struct {
	Addr      string   `mapstructure:"addr" json:"addr" yaml:"addr"`
	Namespace string   `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
	Tags      []string `mapstructure:"tags" json:"tags" yaml:"tags"`
}

// Report configures "climate report".
type Report struct {
	Country string `mapstructure:"country" json:"country" yaml:"country"`
	History bool   `mapstructure:"history" json:"history" yaml:"history"`
}

// Serve configures the comparison web page. The page starts on report.country
// when set.
type Serve struct {
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr"`
}

// Default returns the built-in configuration: fixed file names in the working
// directory, years 2015 through 2025, a 100-epoch search and MySQL output.
func Default() Config {
	hb := model.DefaultHyperband()
	export := Export{
		Dialect: "mysql",
		Tables:  sqlgen.DefaultTables(),
		Countries: Target{
			Input:  "countries and codes.csv",
			Output: "country_info_full.sql",
			Escape: string(sqlgen.EscapeDouble),
		},
		Annual: Target{
			Input:  "official_climate_data.csv",
			Output: "official_annual_temperatures.sql",
			Escape: string(sqlgen.EscapeBackslash),
		},
		Predictions: Target{
			Input:  "predicted_temperatures_2015_2026.csv",
			Output: "predicted_temperatures_full.sql",
			Escape: string(sqlgen.EscapeDouble),
		},
	}
	return Config{
		Job: Job{
			Name: "climate",
			HTTP: httpds.Config{
				Timeout:        30 * time.Second,
				MaxRetries:     2,
				InitialBackoff: 200 * time.Millisecond,
				MaxBackoff:     5 * time.Second,
			},
		},
		Predict: Predict{
			Input:       "official_climate_data.csv",
			Output:      "predicted_temperatures_2015_2026.csv",
			TrainingLog: "training_log.csv",
			FromYear:    2015,
			ToYear:      2025,
			Epochs:      100,
			TestSize:    0.2,
			SplitSeed:   42,
			Search: Search{
				MaxEpochs:   hb.MaxEpochs,
				Factor:      hb.Factor,
				Split:       hb.SearchSplit,
				FinalSplit:  hb.FinalSplit,
				Parallelism: hb.Parallelism,
				Seed:        hb.Seed,
				Space:       hb.Space,
				Train:       hb.Train,
			},
		},
		Export: export,
		Storage: Storage{
			Kind:           "mysql",
			ConnectTimeout: 10 * time.Second,
			Scripts:        []string{export.Countries.Output, export.Annual.Output, export.Predictions.Output},
		},
		Metrics: Metrics{
			Backend: "none",
			Datadog: Datadog{Namespace: "climate."},
		},
		Serve: Serve{Addr: ":8080"},
	}
}
