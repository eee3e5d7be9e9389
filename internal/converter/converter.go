package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Vovarama1992/audioproc/internal/ai"
	"github.com/Vovarama1992/audioproc/internal/assembler"
	"github.com/Vovarama1992/audioproc/internal/chunker"
	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/error_notificator"
	"github.com/Vovarama1992/audioproc/internal/ports"
	"github.com/Vovarama1992/audioproc/internal/sequencer"
	"github.com/Vovarama1992/audioproc/internal/speech"
)

// ErrInput — с входным файлом ничего не сделать (нет, пустой, каталог).
var ErrInput = errors.New("invalid input")

// Artifact — результат одной конвертации.
type Artifact struct {
	JobID       string
	Input       string
	Paths       []string
	Bytes       int64
	ContentType string
	Chunks      int
	Attempts    int
	// номер упавшего запроса, с 1; 0 если упало не на запросе
	FailedChunk int
	States      []State
	Cleaning    *ai.Result
	MirrorURLs  []string
}

type Deps struct {
	Speech  SpeechService
	Cleaner TextCleaner

	// опциональные
	Rules    TextRules
	Mirror   ports.ArtifactMirror
	Runs     ports.RunService
	Notifier error_notificator.Notificator

	// длительность аудио для логов; по умолчанию ffprobe
	Probe func(ctx context.Context, path string) (time.Duration, error)

	Log *zap.Logger
}

// Converter — неинтерактивное исполнение: RequestConfig + файл → артефакт.
// Паузы между запросами держатся по модели и живут между файлами.
type Converter struct {
	speech   SpeechService
	cleaner  TextCleaner
	rules    TextRules
	mirror   ports.ArtifactMirror
	runs     ports.RunService
	notifier error_notificator.Notificator
	probe    func(ctx context.Context, path string) (time.Duration, error)
	log      *zap.Logger

	pacers map[string]*sequencer.Pacer
	newID  func() string
	now    func() time.Time
}

func New(d Deps) *Converter {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	probe := d.Probe
	if probe == nil {
		probe = speech.AudioDuration
	}
	return &Converter{
		speech:   d.Speech,
		cleaner:  d.Cleaner,
		rules:    d.Rules,
		mirror:   d.Mirror,
		runs:     d.Runs,
		notifier: d.Notifier,
		probe:    probe,
		log:      log.Named("converter"),
		pacers:   make(map[string]*sequencer.Pacer),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

func (c *Converter) pacer(cfg config.RequestConfig, model string) *sequencer.Pacer {
	delay := cfg.DelayFor(model)
	key := fmt.Sprintf("%s/%s", model, delay)
	p, ok := c.pacers[key]
	if !ok {
		p = sequencer.NewPacer(delay)
		c.pacers[key] = p
	}
	return p
}

// Run обрабатывает один файл в режиме cfg.Mode.
func (c *Converter) Run(ctx context.Context, cfg config.RequestConfig, path string) (Artifact, error) {
	if err := cfg.Validate(); err != nil {
		return Artifact{}, err
	}

	j := &job{id: c.newID(), input: path}
	j.log = c.log.With(
		zap.String("job", j.id),
		zap.String("mode", string(cfg.Mode)),
		zap.String("file", filepath.Base(path)),
	)
	j.enter(StateConfiguringInput)
	started := c.now()

	var (
		art Artifact
		err error
	)
	switch cfg.Mode {
	case config.ModeTTS:
		art, err = c.runTTS(ctx, j, cfg, path)
	case config.ModeTranscribe:
		art, err = c.runTranscribe(ctx, j, cfg, path)
	case config.ModeClean:
		art, err = c.runClean(ctx, j, cfg, path)
	}

	art.JobID = j.id
	art.Input = path

	if err != nil {
		var chunkErr *sequencer.ChunkError
		if errors.As(err, &chunkErr) {
			art.Attempts += chunkErr.Attempts
			art.FailedChunk = chunkErr.Index + 1
		}
		err = j.abort(err)
		art.States = j.history
		c.notify(ctx, path, err)
		c.record(ctx, cfg, art, started, err)
		return art, err
	}

	j.enter(StateDone)
	art.States = j.history
	j.log.Info("conversion finished",
		zap.Strings("outputs", art.Paths),
		zap.String("size", humanize.Bytes(uint64(art.Bytes))),
		zap.Int("chunks", art.Chunks),
		zap.Int("attempts", art.Attempts),
	)

	art.MirrorURLs = c.mirrorArtifact(ctx, j, art.Paths)
	c.record(ctx, cfg, art, started, nil)
	return art, nil
}

// === TTS ===

func (c *Converter) runTTS(ctx context.Context, j *job, cfg config.RequestConfig, path string) (Artifact, error) {
	var art Artifact

	text, err := readText(path)
	if err != nil {
		return art, err
	}

	if cfg.Cleaning.Enabled {
		res, err := c.cleaner.Clean(ctx, text, cfg, c.pacer(cfg, cfg.Cleaning.Model))
		switch {
		case ctx.Err() != nil:
			return art, ctx.Err()
		case err != nil:
			j.log.Warn("text cleaning failed, using original text",
				zap.String("diagnosis", ai.AnalyzeOpenAIError(err)),
				zap.Error(err),
			)
		default:
			art.Cleaning = &res
			text = res.Text()
		}
	}

	if c.rules != nil {
		if text, err = c.rules.Process(ctx, text); err != nil {
			return art, fmt.Errorf("apply text rules: %w", err)
		}
	}

	chunks := []string{text}
	if chunker.Count(text) > cfg.TTS.MaxChars {
		j.enter(StateChunking)
		chunks = chunker.Split(text, cfg.TTS.MaxChars)
	}
	// пустые куски не озвучиваются; звука в них нет
	speakable := chunker.DropBlank(chunks)
	if len(speakable) == 0 {
		return art, fmt.Errorf("%w: nothing to synthesize in %s", ErrInput, filepath.Base(path))
	}
	if len(chunks) > 1 {
		j.log.Info("text split into chunks",
			zap.Int("chars", chunker.Count(text)),
			zap.Int("chunks", len(speakable)),
			zap.Int("blank_skipped", len(chunks)-len(speakable)),
			zap.Int("max_chars", cfg.TTS.MaxChars),
		)
	}
	chunks = speakable
	art.Chunks = len(chunks)

	j.enter(StateRequesting)
	call := func(ctx context.Context, _ int, chunk string) ([]byte, error) {
		return c.speech.Synthesize(ctx, cfg.TTS, chunk)
	}
	seq := sequencer.New[string, []byte](call, c.pacer(cfg, cfg.TTS.Model), sequencer.OptionsFor(cfg, config.ModeTTS))
	results, err := seq.Run(ctx, j.log, chunks)
	art.Attempts = sequencer.TotalAttempts(results)
	if err != nil {
		return art, err
	}

	j.enter(StateAssembling)
	parts := sequencer.Payloads(results)

	j.enter(StateWriting)
	out := outputPath(cfg, path, "", "."+cfg.TTS.Format)
	n, err := writeFile(out, func(w io.Writer) (int64, error) {
		return assembler.WriteAudio(w, parts)
	})
	if err != nil {
		return art, err
	}

	art.Paths = []string{out}
	art.Bytes = n
	art.ContentType = "audio/" + cfg.TTS.Format
	return art, nil
}

// === транскрипция ===

func (c *Converter) runTranscribe(ctx context.Context, j *job, cfg config.RequestConfig, path string) (Artifact, error) {
	var art Artifact

	info, err := os.Stat(path)
	if err != nil {
		return art, fmt.Errorf("%w: %w", ErrInput, err)
	}
	if info.IsDir() {
		return art, fmt.Errorf("%w: %s is a directory", ErrInput, path)
	}
	if info.Size() == 0 {
		return art, fmt.Errorf("%w: audio file %s is empty", ErrInput, filepath.Base(path))
	}
	fields := []zap.Field{zap.String("size", humanize.Bytes(uint64(info.Size())))}
	if d, err := c.probe(ctx, path); err == nil {
		fields = append(fields, zap.Duration("audio", d))
	}
	j.log.Info("transcribing audio", fields...)
	art.Chunks = 1

	j.enter(StateRequesting)
	call := func(ctx context.Context, _ int, p string) (openai.AudioResponse, error) {
		return c.speech.Transcribe(ctx, cfg.Transcription, p)
	}
	seq := sequencer.New[string, openai.AudioResponse](call, c.pacer(cfg, cfg.Transcription.Model), sequencer.OptionsFor(cfg, config.ModeTranscribe))
	results, err := seq.Run(ctx, j.log, []string{path})
	art.Attempts = sequencer.TotalAttempts(results)
	if err != nil {
		return art, err
	}
	resp := results[0].Payload

	j.enter(StateAssembling)
	type output struct {
		path string
		data []byte
	}
	var outputs []output

	if assembler.IsStructured(cfg.Transcription.Format) {
		data, err := assembler.EncodeTranscriptJSON(resp)
		if err != nil {
			return art, err
		}
		tr := assembler.ExtractTranscript(resp)
		outputs = append(outputs,
			output{outputPath(cfg, path, "_transcription", ".json"), data},
			output{outputPath(cfg, path, "_transcription", ".txt"), []byte(tr.Text)},
		)
		art.ContentType = "application/json"
		if tr.Language != "" {
			j.log.Info("language detected", zap.String("language", tr.Language), zap.Int("segments", len(tr.Segments)))
		}
	} else {
		ext := "." + cfg.Transcription.Format
		if cfg.Transcription.Format == "text" {
			ext = ".txt"
		}
		outputs = append(outputs, output{outputPath(cfg, path, "_transcription", ext), []byte(resp.Text)})
		art.ContentType = "text/plain"
	}

	j.enter(StateWriting)
	for _, o := range outputs {
		n, err := writeBytes(o.path, o.data)
		if err != nil {
			return art, err
		}
		art.Paths = append(art.Paths, o.path)
		art.Bytes += n
	}
	return art, nil
}

// === чистка ===

func (c *Converter) runClean(ctx context.Context, j *job, cfg config.RequestConfig, path string) (Artifact, error) {
	var art Artifact

	text, err := readText(path)
	if err != nil {
		return art, err
	}

	j.enter(StateRequesting)
	res, err := c.cleaner.Clean(ctx, text, cfg, c.pacer(cfg, cfg.Cleaning.Model))
	art.Chunks = res.Pieces
	art.Attempts = res.Attempts
	if err != nil {
		return art, err
	}
	art.Cleaning = &res

	j.enter(StateAssembling)
	out := res.Text()

	j.enter(StateWriting)
	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".txt"
	}
	dst := outputPath(cfg, path, "_cleaned", ext)
	n, err := writeBytes(dst, []byte(out))
	if err != nil {
		return art, err
	}

	art.Paths = []string{dst}
	art.Bytes = n
	art.ContentType = "text/plain"
	return art, nil
}

// === после записи ===

func (c *Converter) mirrorArtifact(ctx context.Context, j *job, paths []string) []string {
	if c.mirror == nil {
		return nil
	}
	var urls []string
	for _, p := range paths {
		url, err := c.mirror.Upload(ctx, j.id, p)
		if err != nil {
			j.log.Warn("artifact upload failed", zap.String("path", p), zap.Error(err))
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

func (c *Converter) record(ctx context.Context, cfg config.RequestConfig, art Artifact, started time.Time, runErr error) {
	if c.runs == nil {
		return
	}

	rec := ports.RunRecord{
		JobID:      art.JobID,
		Mode:       string(cfg.Mode),
		Input:      art.Input,
		Outputs:    art.Paths,
		Status:     ports.RunStatusDone,
		Chunks:     art.Chunks,
		Attempts:   art.Attempts,
		Bytes:      art.Bytes,
		StartedAt:  started,
		FinishedAt: c.now(),
	}
	if runErr != nil {
		msg := runErr.Error()
		rec.Status = ports.RunStatusAborted
		rec.Error = &msg
	}

	// журнал пишем даже при отмене основного контекста
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := c.runs.Record(recCtx, rec); err != nil {
		c.log.Warn("run ledger write failed", zap.String("job", art.JobID), zap.Error(err))
	}
}

func (c *Converter) notify(ctx context.Context, path string, err error) {
	if c.notifier == nil || errors.Is(err, context.Canceled) {
		return
	}
	nCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if nErr := c.notifier.Notify(nCtx, filepath.Base(path), err, ai.AnalyzeOpenAIError(err)); nErr != nil {
		c.log.Warn("failure notification not delivered", zap.Error(nErr))
	}
}

// === файлы ===

func readText(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInput, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrInput, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInput, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: input file %s is empty", ErrInput, filepath.Base(path))
	}
	return text, nil
}

// outputPath — <dir>/<stem><suffix><ext>; dir по умолчанию рядом с входом.
func outputPath(cfg config.RequestConfig, input, suffix, ext string) string {
	dir := cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+suffix+ext)
}

func writeBytes(path string, data []byte) (int64, error) {
	return writeFile(path, func(w io.Writer) (int64, error) {
		n, err := w.Write(data)
		return int64(n), err
	})
}

// writeFile пишет через временный файл рядом: при ошибке на диске
// не остаётся обрезанного артефакта.
func writeFile(path string, write func(io.Writer) (int64, error)) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := write(tmp)
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return n, fmt.Errorf("move output into place: %w", err)
	}
	return n, nil
}
