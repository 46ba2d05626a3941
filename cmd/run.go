package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"jd-interviewer/internal/ai"
	"jd-interviewer/internal/ai/gemini"
	"jd-interviewer/internal/audio"
	"jd-interviewer/internal/interview"
	"jd-interviewer/internal/logger"
	"jd-interviewer/internal/report"
	"jd-interviewer/internal/secrets"
	"jd-interviewer/internal/speech"
	"jd-interviewer/internal/transcribe"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptAnswerText   = "Answer with text"
	PromptAnswerVoice  = "Answer with voice"
	PromptPlayQuestion = "Play the question aloud"
	PromptQuit         = "Quit the interview"

	PromptYes = "Yes"
	PromptNo  = "No"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a mock interview for the configured job description",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("job-description", "f", "", "path to the job description file")
	runCmd.Flags().StringP("output-dir", "o", "", "directory for report and transcript files. Default is the current directory.")

	viper.BindPFlag("job-description-file", runCmd.Flags().Lookup("job-description"))
	viper.BindPFlag("output-dir", runCmd.Flags().Lookup("output-dir"))
}

// run is the main command for the cli.
func run() {
	ctx := context.Background()

	logg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logg.Fatal("getting a config", zap.Error(err))
	}

	logg.Info("starting the jd-interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logg.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logg.Fatal("config is required")
	}

	jdFile := strings.TrimSpace(config.JobDescriptionFile)
	if jdFile == "" {
		jdFile = strings.TrimSpace(viper.GetString("job-description-file"))
	}

	if jdFile == "" {
		logg.Fatal("job description file is required",
			zap.String("hint", "set the 'job-description-file' key in the configuration file or pass --job-description"),
		)
	}

	jd, err := os.ReadFile(jdFile)
	if err != nil {
		logg.Fatal("reading the job description", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config.AI, logg)
	if err != nil {
		logg.Fatal("building the generator", zap.Error(err))
	}

	transcriber := newTranscriber(config.Transcribe, logg)
	synthesizer := newSynthesizer(config.Speech, logg)

	session, err := interview.NewSession(string(jd), generator, transcriber, logg)
	if err != nil {
		logg.Fatal("creating the session", zap.Error(err))
	}

	logg.Info("generating interview questions", zap.String("job_description", jdFile))

	if err := session.Start(ctx); err != nil {
		if errors.Is(err, interview.ErrNoQuestions) {
			logg.Fatal("exiting", zap.String("reason", "no questions generated"), zap.Error(err))
		}
		logg.Fatal("starting the session", zap.Error(err))
	}

	if err := collectAnswers(ctx, session, config, synthesizer, logg); err != nil {
		if errors.Is(err, errExit) {
			logg.Info("exiting", zap.String("reason", "interview aborted"))
			return
		}
		logg.Fatal("collecting answers", zap.Error(err))
	}

	logg.Info("generating the evaluation report")

	if err := session.Evaluate(ctx); err != nil {
		logg.Fatal("evaluating the answers", zap.Error(err))
	}

	text, _ := session.Report()
	fmt.Printf("\n%s\n\n", text)

	outputDir := config.OutputDir
	if outputDir == "" {
		outputDir = viper.GetString("output-dir")
	}

	formatter := report.NewFormatter(outputDir, logg)
	paths, err := formatter.Write(session.Snapshot())
	if err != nil {
		logg.Fatal("writing the report", zap.Error(err))
	}

	logg.Info("interview completed",
		zap.String("report", paths.Markdown),
		zap.String("transcript", paths.Transcript),
	)
}

// collectAnswers drives the per-question collection loop. Recoverable
// failures (blank text, missing audio, transcription errors) keep the cursor
// on the same question and re-present the menu.
func collectAnswers(ctx context.Context, session *interview.Session, config *Config, synthesizer *speech.Client, logg *zap.Logger) error {
	for {
		question, ok := session.CurrentQuestion()
		if !ok {
			return nil
		}

		snap := session.Snapshot()
		fmt.Printf("\nQuestion %d of %d:\n%s\n\n", snap.Cursor+1, len(snap.Questions), question)

		items := []string{PromptAnswerText}
		if voiceAvailable(config) {
			items = append(items, PromptAnswerVoice)
		}
		if synthesizer != nil {
			items = append(items, PromptPlayQuestion)
		}
		items = append(items, PromptQuit)

		prompt := promptui.Select{
			Label: "Choose how to respond",
			Items: items,
		}

		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptAnswerText:
			err = submitText(session)
		case PromptAnswerVoice:
			err = submitVoice(ctx, session, config, logg)
		case PromptPlayQuestion:
			err = playQuestion(ctx, synthesizer, config, question, logg)
		case PromptQuit:
			if confirmQuit() {
				return errExit
			}
		default:
			return fmt.Errorf("invalid action: %s", action)
		}

		if err != nil {
			if recoverable(err) {
				logg.Warn("answer not accepted, the question stays open", zap.Error(err))
				continue
			}
			return err
		}
	}
}

func submitText(session *interview.Session) error {
	prompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("answer must not be empty")
			}
			return nil
		},
	}

	answer, err := prompt.Run()
	if err != nil {
		return err
	}

	return session.SubmitText(answer)
}

func submitVoice(ctx context.Context, session *interview.Session, config *Config, logg *zap.Logger) error {
	startPrompt := promptui.Prompt{Label: "Press ENTER to start recording", AllowEdit: false}
	if _, err := startPrompt.Run(); err != nil {
		return err
	}

	capture, err := audio.StartRecorder(config.Audio.Recorder, config.Audio.SampleRate, config.Audio.Channels)
	if err != nil {
		return fmt.Errorf("%w: %w", interview.ErrMissingAudio, err)
	}

	stopPrompt := promptui.Prompt{Label: "Recording... press ENTER to stop"}
	if _, err := stopPrompt.Run(); err != nil {
		_, _ = capture.Stop()
		return err
	}

	artifact, err := capture.Stop()
	if err != nil {
		return fmt.Errorf("%w: %w", interview.ErrMissingAudio, err)
	}

	logg.Info("recording stopped", zap.Duration("duration", artifact.Duration()))

	saveRecording(session, artifact, config, logg)

	return session.SubmitVoice(ctx, artifact)
}

// saveRecording keeps the raw answer audio next to the reports. Best effort
// only: the session operates purely on the in-memory artifact.
func saveRecording(session *interview.Session, artifact *audio.Artifact, config *Config, logg *zap.Logger) {
	dir := config.OutputDir
	if dir == "" {
		dir = "."
	}

	snap := session.Snapshot()
	path := filepath.Join(dir, fmt.Sprintf("answer-%s-%d.wav", snap.ID, snap.Cursor+1))

	if err := artifact.WriteFile(path); err != nil {
		logg.Warn("saving the recording", zap.Error(err))
		return
	}

	logg.Debug("recording saved", zap.String("path", path))
}

func playQuestion(ctx context.Context, synthesizer *speech.Client, config *Config, question string, logg *zap.Logger) error {
	data, err := synthesizer.Synthesize(ctx, question)
	if err != nil {
		logg.Warn("synthesizing the question", zap.Error(err))
		return nil
	}

	file, err := os.CreateTemp("", "question-*.wav")
	if err != nil {
		logg.Warn("creating a temp file for question audio", zap.Error(err))
		return nil
	}
	defer os.Remove(file.Name())

	if _, err := file.Write(data); err != nil {
		file.Close()
		logg.Warn("writing question audio", zap.Error(err))
		return nil
	}
	file.Close()

	player := ""
	if config.Audio != nil {
		player = strings.TrimSpace(config.Audio.Player)
	}

	if player == "" {
		logg.Warn("no audio player configured", zap.String("hint", "set audio.player, e.g. 'aplay -q'"))
		return nil
	}

	parts := strings.Fields(player)
	parts = append(parts, file.Name())

	if err := exec.CommandContext(ctx, parts[0], parts[1:]...).Run(); err != nil {
		logg.Warn("playing question audio", zap.Error(err))
	}

	return nil
}

func confirmQuit() bool {
	prompt := promptui.Select{
		Label: "Quit without a report?",
		Items: []string{PromptNo, PromptYes},
	}

	_, answer, err := prompt.Run()
	if err != nil {
		return true
	}

	return answer == PromptYes
}

// recoverable reports whether the failure leaves the current question open
// for another attempt.
func recoverable(err error) bool {
	return errors.Is(err, interview.ErrEmptyAnswer) ||
		errors.Is(err, interview.ErrMissingAudio) ||
		errors.Is(err, interview.ErrTranscription)
}

func voiceAvailable(config *Config) bool {
	return config.Audio != nil && strings.TrimSpace(config.Audio.Recorder) != "" &&
		config.Transcribe != nil && strings.TrimSpace(config.Transcribe.ServerURL) != ""
}

func newGenerator(ctx context.Context, config *AIConfig, logg *zap.Logger) (ai.Generator, error) {
	if config == nil {
		return nil, errors.New("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	if config.Gemini == nil {
		return nil, errors.New("gemini configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithAIFields(logg, "gemini", config.Gemini.Model)

	return gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries, genLogger)
}

func newTranscriber(config *TranscribeConfig, logg *zap.Logger) interview.Transcriber {
	if config == nil || strings.TrimSpace(config.ServerURL) == "" {
		logg.Info("voice answers disabled", zap.String("reason", "no transcribe.server-url configured"))
		return nil
	}

	client, err := transcribe.New(config.ServerURL, config.Model, config.Language, logg)
	if err != nil {
		logg.Warn("voice answers disabled", zap.Error(err))
		return nil
	}

	return client
}

func newSynthesizer(config *SpeechConfig, logg *zap.Logger) *speech.Client {
	if config == nil || strings.TrimSpace(config.ServerURL) == "" {
		return nil
	}

	client, err := speech.New(config.ServerURL, config.Model, config.Voice, logg)
	if err != nil {
		logg.Warn("question audio disabled", zap.Error(err))
		return nil
	}

	return client
}
