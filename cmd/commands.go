package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Vovarama1992/audioproc/internal/ai"
	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/converter"
	"github.com/Vovarama1992/audioproc/internal/menu"
)

var (
	errUsage            = errors.New("usage error")
	errConversionFailed = errors.New("conversion failed")
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "audioproc",
		Short:         "Text-to-speech, transcription and text cleaning over the OpenAI API",
		Long:          "Run without arguments for the interactive menu, or use a subcommand for scripted runs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, a)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.AddCommand(
		newConvertCmd(a, config.ModeTTS, "tts <file|dir>...", "Convert text files to speech"),
		newConvertCmd(a, config.ModeTranscribe, "transcribe <file|dir>...", "Transcribe audio files"),
		newConvertCmd(a, config.ModeClean, "clean <file|dir>...", "Clean up text files with a chat model"),
		newProfileCmd(a),
		newRulesCmd(a),
		newRunsCmd(a),
	)
	return root
}

// === конвертация ===

func newConvertCmd(a *app, mode config.Mode, use, short string) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: at least one input file or directory is required", errUsage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, a, mode, o, args)
		},
	}

	o.registerCommon(cmd)
	switch mode {
	case config.ModeTTS:
		o.registerTTS(cmd)
		o.registerCleaning(cmd, "clean-")
	case config.ModeTranscribe:
		o.registerTranscription(cmd, "")
	case config.ModeClean:
		o.registerCleaning(cmd, "")
	}
	return cmd
}

func runConvert(cmd *cobra.Command, a *app, mode config.Mode, o *options, args []string) error {
	ctx := cmd.Context()

	// === 1. конфиг: дефолты → профиль → окружение → флаги ===
	cfg, err := a.resolve(mode, o.profile)
	if err != nil {
		return err
	}
	o.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// === 2. входы ===
	files, err := converter.ExpandInputs(mode, args)
	if err != nil {
		return err
	}

	conv, err := a.converter()
	if err != nil {
		return err
	}

	// === 3. один файл ===
	if len(files) == 1 && !anyDir(args) {
		art, err := conv.Run(ctx, cfg, files[0])
		if err != nil {
			return err
		}
		return art.WriteText(a.out)
	}

	// === 4. пачка ===
	sum := conv.RunBatch(ctx, cfg, files)
	if err := sum.WriteText(a.out); err != nil {
		return err
	}
	if o.jsonReport != "" {
		if err := writeReport(o.jsonReport, sum); err != nil {
			return err
		}
	}
	if !sum.OK() {
		return fmt.Errorf("%w: %d of %d files", errConversionFailed, sum.Failed, sum.Total)
	}
	return nil
}

func (a *app) resolve(mode config.Mode, profileName string) (config.RequestConfig, error) {
	if profileName == "" {
		return config.Resolve(mode, a.env, nil), nil
	}
	s, err := a.profiles.Get(profileName)
	if err != nil {
		return config.RequestConfig{}, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	return config.Resolve(mode, a.env, &s), nil
}

func anyDir(paths []string) bool {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func writeReport(path string, sum converter.Summary) error {
	data, err := sum.JSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// === интерактивный режим ===

func runInteractive(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	m := menu.New(menu.NewPrompter(a.in, a.out), a.profiles, a.env, a.log)

	fmt.Fprintln(a.out, "🎙 audioproc: text ↔ speech with OpenAI")

	if err := m.EnsureAPIKey(); err != nil {
		if errors.Is(err, menu.ErrAborted) {
			return config.ErrMissingAPIKey
		}
		return err
	}

	failed := 0
	for {
		ch, err := m.Run(ctx)
		if errors.Is(err, menu.ErrAborted) {
			break
		}
		if err != nil {
			return err
		}

		conv, err := a.converter()
		if err != nil {
			return err
		}

		if ch.Batch {
			sum := conv.RunBatch(ctx, ch.Config, ch.Files)
			failed += sum.Failed
			if err := sum.WriteText(a.out); err != nil {
				return err
			}
		} else {
			art, err := conv.Run(ctx, ch.Config, ch.Files[0])
			if err != nil {
				failed++
				fmt.Fprintf(a.out, "\n❌ %s: %v\n", filepath.Base(ch.Files[0]), err)
				if d := ai.AnalyzeOpenAIError(err); d != "" {
					fmt.Fprintf(a.out, "   %s\n", d)
				}
			} else if err := art.WriteText(a.out); err != nil {
				return err
			}
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		again, err := m.Again()
		if err != nil {
			return err
		}
		if !again {
			break
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d file(s)", errConversionFailed, failed)
	}
	return nil
}

// === профили ===

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved settings profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			names, err := a.profiles.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintf(a.out, "No profiles in %s\n", a.profiles.Path())
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(a.out, n)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a profile as YAML",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := a.profiles.Get(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", config.ErrInvalid, err)
			}
			data, err := yaml.Marshal(s)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}

	o := &options{}
	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Save defaults plus the given flags as a profile",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.resolve(config.ModeTTS, o.profile)
			if err != nil {
				return err
			}
			o.apply(cmd, &cfg)

			for _, mode := range []config.Mode{config.ModeTTS, config.ModeTranscribe, config.ModeClean} {
				probe := cfg
				probe.Mode = mode
				if err := probe.Validate(); err != nil {
					return err
				}
			}
			if err := a.profiles.Save(args[0], cfg.Settings()); err != nil {
				return fmt.Errorf("%w: %w", config.ErrInvalid, err)
			}
			fmt.Fprintf(a.out, "Profile %q saved to %s\n", args[0], a.profiles.Path())
			return nil
		},
	}
	save.Flags().StringVar(&o.profile, "from", "", "start from an existing profile")
	o.registerTTS(save)
	o.registerTranscription(save, "transcribe-")
	o.registerCleaning(save, "clean-")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a profile",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.profiles.Delete(args[0]); err != nil {
				return fmt.Errorf("%w: %w", config.ErrInvalid, err)
			}
			fmt.Fprintf(a.out, "Profile %q deleted\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, save, del)
	return cmd
}

// === журнал ===

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent conversions from the run ledger",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.runs == nil {
				return fmt.Errorf("%w: run ledger is not configured (DATABASE_URL)", config.ErrInvalid)
			}
			recs, err := a.runs.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeRuns(a.out, recs, time.Now())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records")
	return cmd
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: expected %d argument(s), got %d", errUsage, n, len(args))
		}
		return nil
	}
}
