package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"voice_idea_intake/generator"
	"voice_idea_intake/idea"
	"voice_idea_intake/publisher"
	"voice_idea_intake/stt"
)

var errIncomplete = errors.New("incomplete submission")

func readAllStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}

func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func transcribeCmd(g *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file and detect its language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g)
			if err != nil {
				return err
			}
			res, err := a.transcribeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := marshalIndent(struct {
				stt.Result
				DialectHint string `json:"dialect_hint,omitempty"`
			}{res, res.DialectHint()})
			if err != nil {
				return err
			}
			return writeOutput(out, data)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the result to this file instead of stdout")
	return cmd
}

func (a *app) transcribeFile(ctx context.Context, path string) (stt.Result, error) {
	tr, err := a.transcriber()
	if err != nil {
		return stt.Result{}, err
	}
	if tr == nil {
		return stt.Result{}, fmt.Errorf("%w: set STT_BASE_URL or stt.provider", stt.ErrNotConfigured)
	}
	audio, err := os.ReadFile(path)
	if err != nil {
		return stt.Result{}, fmt.Errorf("read audio: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.STT.Timeout.Std())
	defer cancel()
	return tr.Transcribe(ctx, audio, filepath.Base(path))
}

func extractCmd(g *globalFlags) *cobra.Command {
	var text, file, languageHint, dialectHint, out string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a structured draft from a transcript",
		Long: `Extract a structured draft from a transcript given with --text, --file
or on stdin. The output carries the draft, per-field provenance, the missing
required fields and one question per missing field.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g)
			if err != nil {
				return err
			}
			transcript, err := readText(text, file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(transcript) == "" {
				return errors.New("transcript is empty")
			}
			if languageHint == "" {
				languageHint = stt.DetectScript(transcript)
			}
			agent, err := a.requireAgent()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Server.RequestTimeout.Std())
			defer cancel()
			res, err := agent.Extract(ctx, generator.ExtractInput{
				Transcript:   transcript,
				LanguageHint: languageHint,
				DialectHint:  dialectHint,
			})
			if err != nil {
				return err
			}
			data, err := marshalIndent(res)
			if err != nil {
				return err
			}
			return writeOutput(out, data)
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Transcript text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the transcript from this file")
	cmd.Flags().StringVar(&languageHint, "language-hint", "", "Language hint: ar, en or unknown")
	cmd.Flags().StringVar(&dialectHint, "dialect-hint", "", "Dialect hint, e.g. arabic")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the result to this file instead of stdout")
	return cmd
}

func clarifyCmd(g *globalFlags) *cobra.Command {
	var draftPath, answers, answersFile, out string

	cmd := &cobra.Command{
		Use:   "clarify",
		Short: "Merge answers into a draft and re-check completeness",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g)
			if err != nil {
				return err
			}
			d, err := loadDraft(draftPath)
			if err != nil {
				return err
			}
			answerText, err := readText(answers, answersFile)
			if err != nil {
				return err
			}
			agent, err := a.requireAgent()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Server.RequestTimeout.Std())
			defer cancel()
			res, err := agent.Clarify(ctx, generator.ClarifyInput{
				Draft:     d,
				Answers:   answerText,
				Questions: idea.Evaluate(d).Questions,
			})
			if err != nil {
				return err
			}
			data, err := marshalIndent(res)
			if err != nil {
				return err
			}
			return writeOutput(out, data)
		},
	}
	cmd.Flags().StringVarP(&draftPath, "draft", "d", "", "Draft or extraction result JSON file (- for stdin)")
	cmd.Flags().StringVarP(&answers, "answers", "a", "", "Answer text")
	cmd.Flags().StringVar(&answersFile, "answers-file", "", "Read the answers from this file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the result to this file instead of stdout")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

func submitCmd(g *globalFlags) *cobra.Command {
	var draftPath, transcript, language, out string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a complete draft",
		Long: `Submit a draft. A complete draft is assigned an id; an incomplete one is
rejected with the missing fields and their questions and the command exits
non-zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g)
			if err != nil {
				return err
			}
			d, err := loadDraft(draftPath)
			if err != nil {
				return err
			}
			sub, rej := a.publisher().Submit(publisher.SubmitParams{
				Draft:      d,
				Transcript: transcript,
				Language:   language,
			})
			if rej != nil {
				data, err := marshalIndent(rej)
				if err != nil {
					return err
				}
				_, _ = os.Stderr.Write(append(data, '\n'))
				return errIncomplete
			}
			data, err := marshalIndent(sub)
			if err != nil {
				return err
			}
			return writeOutput(out, data)
		},
	}
	cmd.Flags().StringVarP(&draftPath, "draft", "d", "", "Draft or extraction result JSON file (- for stdin)")
	cmd.Flags().StringVar(&transcript, "transcript", "", "Original transcript, kept for context")
	cmd.Flags().StringVar(&language, "language", "", "Transcript language")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the submission to this file instead of stdout")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

func briefCmd(g *globalFlags) *cobra.Command {
	var draftPath, out string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Render a draft as an evaluator brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadApp(g); err != nil {
				return err
			}
			d, err := loadDraft(draftPath)
			if err != nil {
				return err
			}
			b, err := publisher.RenderBrief(d)
			if err != nil {
				return err
			}
			if asHTML {
				return writeOutput(out, []byte(b.HTML))
			}
			return writeOutput(out, []byte(b.Markdown))
		},
	}
	cmd.Flags().StringVarP(&draftPath, "draft", "d", "", "Draft or extraction result JSON file (- for stdin)")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Emit HTML instead of Markdown")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the brief to this file instead of stdout")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

func loadDraft(path string) (idea.Draft, error) {
	raw, err := readDraftFile(path)
	if err != nil {
		return idea.Draft{}, err
	}
	var d idea.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return idea.Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

// readText returns text, else the contents of file, else stdin.
func readText(text, file string) (string, error) {
	if text != "" {
		return text, nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}
	data, err := readAllStdin()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
