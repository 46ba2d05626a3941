package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jd-interviewer"
)

type Config struct {
	JobDescriptionFile string            `mapstructure:"job-description-file"`
	OutputDir          string            `mapstructure:"output-dir"`
	AI                 *AIConfig         `mapstructure:"ai"`
	Audio              *AudioConfig      `mapstructure:"audio"`
	Transcribe         *TranscribeConfig `mapstructure:"transcribe"`
	Speech             *SpeechConfig     `mapstructure:"speech"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type AudioConfig struct {
	// Recorder is the command that streams raw 16-bit little-endian PCM to
	// stdout, e.g. "arecord -q -f S16_LE -r 16000 -c 1 -t raw".
	Recorder   string `mapstructure:"recorder"`
	SampleRate int    `mapstructure:"sample-rate"`
	Channels   int    `mapstructure:"channels"`
	// Player is the command used to play synthesized question audio; the
	// audio file path is appended as the last argument.
	Player string `mapstructure:"player"`
}

type TranscribeConfig struct {
	ServerURL string `mapstructure:"server-url"`
	Model     string `mapstructure:"model"`
	Language  string `mapstructure:"language"`
}

type SpeechConfig struct {
	ServerURL string `mapstructure:"server-url"`
	Model     string `mapstructure:"model"`
	Voice     string `mapstructure:"voice"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jd-interviewer is a cli for running an automated mock interview from a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jd-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
