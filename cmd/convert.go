package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/longkey1/gptmd/internal/gptmd/config"
	"github.com/longkey1/gptmd/internal/gptmd/convert"
	"github.com/longkey1/gptmd/internal/gptmd/export"
)

var (
	inputPath       string
	outputPath      string
	conversationRef string
	outDir          string
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert an export file to Markdown",
	Long: `Convert a ChatGPT export file to Markdown.

The input may be a single conversation (JSON object) or a full account export
(conversations.json). The output defaults to the input path with a .md extension.
If no input is given, the path is asked for interactively.

For full account exports, select a conversation with --conversation (full ID,
a prefix of at least 4 characters, or "latest"). Without a selection every
conversation is written to --out-dir as <short-id>-<title>.md.

Examples:
  gptmd convert chat.json
  gptmd convert chat.json notes/chat.md
  gptmd convert -i chat.json -o notes/chat.md
  gptmd convert conversations.json -c latest
  gptmd convert conversations.json --out-dir exports/`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		job := resolveJob(args, cfg)
		if job.input == "" {
			input, err := askInputPath(os.Stdin, os.Stdout)
			if err != nil {
				return exitError(exitUsage, "reading input path: %w", err)
			}
			if input == "" {
				fmt.Println("Cancelled.")
				return nil
			}
			job.input = input
			job.output = defaultOutputPath(input)
		}

		converter, err := newConverter(cfg, log)
		if err != nil {
			return err
		}
		return job.run(converter, log)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&inputPath, "input", "i", "", "input export JSON path")
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output Markdown path")
	convertCmd.Flags().StringVarP(&conversationRef, "conversation", "c", "", "conversation to convert: ID, ID prefix or \"latest\"")
	convertCmd.Flags().StringVar(&outDir, "out-dir", "", "output directory when converting every conversation of an export")
}

// convertJob describes one conversion request
type convertJob struct {
	input        string
	output       string
	conversation string
	outDir       string
}

// resolveJob merges positional arguments and flags. Flags take precedence.
func resolveJob(args []string, cfg *config.Config) convertJob {
	var job convertJob
	if len(args) >= 1 {
		job.input = args[0]
	}
	if len(args) >= 2 {
		job.output = args[1]
	}
	if inputPath != "" {
		job.input = inputPath
	}
	if outputPath != "" {
		job.output = outputPath
	}

	job.input = config.NormalizePathArg(job.input)
	job.output = config.NormalizePathArg(job.output)
	if job.input != "" && job.output == "" {
		job.output = defaultOutputPath(job.input)
	}

	job.conversation = strings.TrimSpace(conversationRef)
	job.outDir = config.NormalizePathArg(outDir)
	if job.outDir == "" {
		job.outDir = cfg.OutDir
	}
	return job
}

// defaultOutputPath returns the input path with its extension replaced by .md
func defaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".md"
}

// newConverter builds a converter from the configuration
func newConverter(cfg *config.Config, log zerolog.Logger) (*convert.Converter, error) {
	target, err := cfg.GetTarget()
	if err != nil {
		return nil, exitError(exitUsage, "invalid configuration: %w", err)
	}
	l, err := cfg.GetLabels()
	if err != nil {
		return nil, exitError(exitUsage, "loading labels: %w", err)
	}
	return convert.New(convert.Options{
		Labels:           l,
		Target:           target,
		ImagePlaceholder: cfg.ImagePlaceholder,
		Logger:           &log,
	}), nil
}

// run loads the export, converts the selected conversations and writes the documents
func (j convertJob) run(converter *convert.Converter, log zerolog.Logger) error {
	if !isReadableFile(j.input) {
		return exitError(exitUnreadable, "input file does not exist or is not readable: %s", j.input)
	}

	convs, err := export.LoadFile(j.input)
	if err != nil {
		if errors.Is(err, export.ErrInvalidJSON) || errors.Is(err, export.ErrNotConversation) {
			return exitError(exitInvalidJSON, "%w", err)
		}
		return exitError(exitUnreadable, "reading input: %w", err)
	}
	log.Debug().Str("input", j.input).Int("conversations", len(convs)).Msg("loaded export")

	var selected *export.Conversation
	switch {
	case j.conversation != "":
		selected, err = export.FindConversation(convs, j.conversation)
		if err != nil {
			return exitError(exitConvert, "finding conversation: %w", err)
		}
	case len(convs) == 1:
		selected = &convs[0]
	}

	if selected != nil {
		return writeDocument(j.output, converter.Document(selected))
	}

	dir := j.outDir
	if dir == "" {
		dir = strings.TrimSuffix(j.input, filepath.Ext(j.input))
	}
	for i := range convs {
		conv := &convs[i]
		path := filepath.Join(dir, documentName(conv))
		if err := writeDocument(path, converter.Document(conv)); err != nil {
			return err
		}
	}
	fmt.Printf("Converted %d conversations into %s\n", len(convs), dir)
	return nil
}

// writeDocument writes a Markdown document, creating parent directories as needed
func writeDocument(path, doc string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return exitError(exitWriteFailure, "failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return exitError(exitWriteFailure, "failed to write %s: %w", path, err)
	}
	fmt.Printf("Markdown file written: %s\n", path)
	return nil
}

// documentName builds a file name from the conversation's short ID and title
func documentName(conv *export.Conversation) string {
	name := conv.GetShortID()
	if slug := slugify(conv.Title, 48); slug != "" {
		if name != "" {
			name += "-"
		}
		name += slug
	}
	if name == "" {
		name = "conversation"
	}
	return name + ".md"
}

// slugify keeps letters and digits of any script, collapsing everything else into
// single dashes, and truncates to maxRunes.
func slugify(s string, maxRunes int) string {
	var b strings.Builder
	n := 0
	dash := false
	for _, r := range strings.ToLower(s) {
		if n >= maxRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
				n++
			}
			b.WriteRune(r)
			n++
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// isReadableFile reports whether path is an existing regular file we can open
func isReadableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// askInputPath prompts until the user enters a readable file or cancels.
// An empty line, "q", "quit" or "exit" cancels and returns "".
func askInputPath(in io.Reader, out io.Writer) (string, error) {
	reader := bufio.NewReader(in)
	fmt.Fprint(out, "Path of the ChatGPT export JSON file (quotes allowed, q to quit): ")
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		answer := strings.TrimSpace(line)
		switch strings.ToLower(answer) {
		case "", "q", "quit", "exit":
			return "", nil
		}

		if candidate := config.NormalizePathArg(answer); isReadableFile(candidate) {
			return candidate, nil
		}
		if err == io.EOF {
			return "", nil
		}
		fmt.Fprintf(out, "Invalid or unreadable path: %s\nPlease try again (q to quit): ", answer)
	}
}
