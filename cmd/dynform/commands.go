package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-dynform"
	"github.com/goliatone/go-dynform/internal/config"
	"github.com/goliatone/go-dynform/internal/logging"
	"github.com/goliatone/go-dynform/internal/server"
	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/session"
	"github.com/goliatone/go-dynform/pkg/state"
	"github.com/goliatone/go-dynform/pkg/validation"
)

var errUsage = errors.New("invalid usage")

func newFlagSet(env *cliEnv, name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: dynform %s %s\n\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// newLogger builds the command logger from the environment configuration.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	logger, cleanup, err := logging.New(cfg.Logging())
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = cleanup() }, nil
}

func sourceFor(path string) fileio.Source {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return fileio.SourceFromURL(path)
	}
	return fileio.SourceFromFile(path)
}

func readerOptions() []fileio.Option {
	return []fileio.Option{
		fileio.WithHTTPClient(&http.Client{}),
		fileio.WithTimeout(30 * time.Second),
	}
}

// loadSchema reads path, or returns the built-in schema when path is empty.
func loadSchema(ctx context.Context, path string) (model.FormSchema, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return dynform.DefaultSchema(), nil
	}
	form, err := dynform.LoadSchema(ctx, sourceFor(path), readerOptions()...)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("load %s: %s", path, session.ErrorDetail(err))
	}
	return form, nil
}

func runServe(ctx context.Context, env *cliEnv, args []string) error {
	cfg := config.Load()

	fs := newFlagSet(env, "serve", "[flags]")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.SchemaPath, "schema", cfg.SchemaPath, "initial schema file or URL (built-in example if empty)")
	fs.StringVar(&cfg.CatalogDir, "catalog", cfg.CatalogDir, "directory of schemas offered under /schemas")
	fs.StringVar(&cfg.SubmitURL, "submit-url", cfg.SubmitURL, "webhook that receives accepted payloads")
	fs.StringVar(&cfg.ThemeVariant, "variant", cfg.ThemeVariant, "default theme variant (light or dark)")
	fs.StringVar(&cfg.ToggleValidation, "toggle", cfg.ToggleValidation, "checkbox validation timing (pre or post)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	logger, cleanup, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	form, err := loadSchema(ctx, cfg.SchemaPath)
	if err != nil {
		return err
	}
	opts := []server.Option{server.WithLogger(logger), server.WithSchema(form)}
	if cfg.CatalogDir != "" {
		catalog, err := schema.LoadFS(os.DirFS(cfg.CatalogDir))
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		logger.Info("serve: catalog loaded", "dir", cfg.CatalogDir, "schemas", catalog.Len())
		opts = append(opts, server.WithCatalog(catalog))
	}
	return server.Run(ctx, cfg, opts...)
}

func runFill(ctx context.Context, env *cliEnv, args []string) error {
	cfg := config.Load()

	fs := newFlagSet(env, "fill", "[flags]")
	schemaPath := fs.String("schema", cfg.SchemaPath, "schema file or URL (built-in example if empty)")
	format := fs.String("format", string(tui.OutputFormatJSON), "payload format: json, form or pretty")
	only := fs.String("only", "", "comma separated field ids to ask for")
	submitURL := fs.String("submit-url", cfg.SubmitURL, "webhook that receives the accepted payload")
	toggle := fs.String("toggle", cfg.ToggleValidation, "checkbox validation timing (pre or post)")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	outputFormat := tui.OutputFormat(strings.ToLower(*format))
	switch outputFormat {
	case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	mode, ok := state.ParseToggleValidation(*toggle)
	if !ok {
		return fmt.Errorf("unknown toggle validation %q", *toggle)
	}

	logger, cleanup, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	form, err := loadSchema(ctx, *schemaPath)
	if err != nil {
		return err
	}

	storeOpts := []state.Option{state.WithToggleValidation(mode)}
	if *submitURL != "" {
		storeOpts = append(storeOpts, state.WithSubmitter(
			session.NewWebhookSubmitter(*submitURL, session.WithWebhookTimeout(cfg.SubmitTimeout)),
		))
	}

	renderer, err := dynform.NewTUIRenderer(
		tui.WithOutputFormat(outputFormat),
		tui.WithStoreOptions(storeOpts...),
		tui.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	payload, err := renderer.Render(ctx, form, render.RenderOptions{Subset: render.ParseFieldSubset(*only)})
	if err != nil {
		return err
	}
	return writeOutput(env, *output, payload)
}

func runRender(ctx context.Context, env *cliEnv, args []string) error {
	cfg := config.Load()

	fs := newFlagSet(env, "render", "[flags]")
	schemaPath := fs.String("schema", cfg.SchemaPath, "schema file or URL (built-in example if empty)")
	output := fs.String("output", "", "output file (stdout if empty)")
	variant := fs.String("variant", cfg.ThemeVariant, "theme variant (light or dark)")
	only := fs.String("only", "", "comma separated field ids to render")
	fragment := fs.Bool("fragment", false, "render the fields without page chrome")
	preset := fs.String("preset", "", "JSON preset overriding titles, labels and options")
	strict := fs.Bool("strict", false, "fail when the schema has lint errors")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	logger, cleanup, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	options := []orchestrator.Option{
		orchestrator.WithReader(fileio.NewReader(readerOptions()...)),
		orchestrator.WithStrictLint(*strict),
		orchestrator.WithLogger(logger),
	}
	if *preset != "" {
		data, err := os.ReadFile(*preset)
		if err != nil {
			return fmt.Errorf("read preset: %w", err)
		}
		transformer, err := orchestrator.NewJSONPresetTransformer(data)
		if err != nil {
			return err
		}
		options = append(options, orchestrator.WithSchemaTransformer(transformer))
	}

	req := orchestrator.Request{
		Renderer: "vanilla",
		Variant:  *variant,
		RenderOptions: render.RenderOptions{
			Subset:   render.ParseFieldSubset(*only),
			Fragment: *fragment,
		},
	}
	if path := strings.TrimSpace(*schemaPath); path != "" {
		req.Source = sourceFor(path)
	} else {
		form := dynform.DefaultSchema()
		req.Schema = &form
	}

	html, err := dynform.NewOrchestrator(options...).Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := writeOutput(env, *output, html); err != nil {
		return err
	}
	if *output != "" {
		fmt.Fprintf(env.stdout, "Form written to %s\n", *output)
	}
	return nil
}

func runExport(ctx context.Context, env *cliEnv, args []string) error {
	cfg := config.Load()

	fs := newFlagSet(env, "export", "[flags]")
	schemaPath := fs.String("schema", cfg.SchemaPath, "schema file or URL (built-in example if empty)")
	format := fs.String("format", string(schema.FormatJSON), "output format: json or yaml")
	dir := fs.String("dir", "", "write the file into this directory instead of stdout")
	name := fs.String("name", "", "file name (formSchema.json or formSchema.yaml if empty)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	fileFormat := schema.Format(strings.ToLower(*format))
	if fileFormat != schema.FormatJSON && fileFormat != schema.FormatYAML {
		return fmt.Errorf("unknown format %q", *format)
	}
	fileName := strings.TrimSpace(*name)
	if fileName == "" {
		fileName = strings.TrimSuffix(fileio.DefaultExportName, ".json") + fileFormat.Extension()
	}

	form, err := loadSchema(ctx, *schemaPath)
	if err != nil {
		return err
	}

	var sink fileio.Downloader = fileio.WriterSink{W: env.stdout}
	dirSink := &fileio.DirSink{Dir: *dir}
	if *dir != "" {
		sink = dirSink
	}
	if err := dynform.NewSession(form, session.WithDownloader(sink)).Export(ctx, fileName); err != nil {
		return err
	}
	if dirSink.Written != "" {
		fmt.Fprintf(env.stdout, "Schema written to %s\n", dirSink.Written)
	}
	return nil
}

type violation struct {
	file    string
	message string
	fatal   bool
}

func runLint(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlagSet(env, "lint", "[paths...]")
	warnings := fs.Bool("warnings", true, "report warnings as well as errors")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	paths := fs.Args()
	if len(paths) == 0 {
		fs.Usage()
		return errUsage
	}

	reader := fileio.NewReader(readerOptions()...)
	var violations []violation
	for _, path := range paths {
		found, err := lintFile(ctx, reader, path)
		if err != nil {
			return err
		}
		violations = append(violations, found...)
	}

	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].file < violations[j].file
	})

	fatal := 0
	for _, v := range violations {
		if v.fatal {
			fatal++
		} else if !*warnings {
			continue
		}
		fmt.Fprintf(env.stdout, "%s: %s\n", v.file, v.message)
	}
	if fatal > 0 {
		return fmt.Errorf("%d error(s) found", fatal)
	}
	return nil
}

func lintFile(ctx context.Context, reader *fileio.Reader, path string) ([]violation, error) {
	text, err := reader.ReadText(ctx, sourceFor(path))
	if err != nil {
		var readErr *fileio.ReadError
		if errors.As(err, &readErr) {
			return []violation{{file: path, message: "error: " + session.ErrorDetail(err), fatal: true}}, nil
		}
		return nil, err
	}

	form, err := schema.Decode(path, []byte(text))
	if err != nil {
		var parseErr *schema.ParseError
		if !errors.As(err, &parseErr) {
			return nil, err
		}
		if len(parseErr.Issues) == 0 {
			return []violation{{file: path, message: "error: " + parseErr.Error(), fatal: true}}, nil
		}
		out := make([]violation, 0, len(parseErr.Issues))
		for _, issue := range parseErr.Issues {
			out = append(out, violation{file: path, message: issue.String(), fatal: true})
		}
		return out, nil
	}

	var out []violation
	for _, issue := range validation.Lint(form).Issues {
		out = append(out, violation{
			file:    path,
			message: issue.String(),
			fatal:   issue.Severity == validation.SeverityError,
		})
	}
	return out, nil
}

func writeOutput(env *cliEnv, path string, data []byte) error {
	if path == "" {
		if _, err := env.stdout.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err := io.WriteString(env.stdout, "\n")
			return err
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
