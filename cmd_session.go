package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"voice_idea_intake/generator"
	"voice_idea_intake/publisher"
	"voice_idea_intake/stt"
)

func sessionCmd(g *globalFlags) *cobra.Command {
	var audioPath string
	var maxRounds int

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Capture an idea interactively until it is complete",
		Long: `Runs the full intake loop in the terminal: describe the idea (or pass
--audio), answer the follow-up questions, review the brief and submit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g)
			if err != nil {
				return err
			}
			agent, err := a.requireAgent()
			if err != nil {
				return err
			}
			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			s := &session{app: a, agent: agent, line: line, maxRounds: maxRounds}
			err = s.run(cmd.Context(), audioPath)
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\naborted")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&audioPath, "audio", "", "Start from this audio recording instead of typed text")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 5, "Maximum clarification rounds")
	return cmd
}

type session struct {
	app       *app
	agent     *generator.Agent
	line      *liner.State
	maxRounds int

	transcript string
	language   string
	dialect    string
}

func (s *session) prompt(label string) (string, error) {
	text, err := s.line.Prompt(label)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		s.line.AppendHistory(text)
	}
	return text, nil
}

func (s *session) run(ctx context.Context, audioPath string) error {
	if err := s.capture(ctx, audioPath); err != nil {
		return err
	}

	res, err := s.extract(ctx)
	if err != nil {
		return err
	}

	for round := 1; !res.Complete() && round <= s.maxRounds; round++ {
		fmt.Printf("\nA few details are missing (%d):\n", len(res.MissingFields))
		var answers []string
		for _, q := range res.Questions {
			fmt.Println("  " + q)
			ans, err := s.prompt("> ")
			if err != nil {
				return err
			}
			if strings.TrimSpace(ans) != "" {
				answers = append(answers, strings.TrimSpace(ans))
			}
		}
		if len(answers) == 0 {
			fmt.Println("No answers given, stopping here.")
			break
		}
		res, err = s.clarify(ctx, res, strings.Join(answers, "\n"))
		if err != nil {
			return err
		}
	}

	b, err := publisher.RenderBrief(res.Draft)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(b.Markdown)
	fmt.Println()

	if !res.Complete() {
		fmt.Printf("Still missing: %v. Not submitted.\n", res.MissingFields)
		return errIncomplete
	}

	confirm, err := s.prompt("Submit this idea? (yes/no): ")
	if err != nil {
		return err
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(confirm)), "y") {
		fmt.Println("Not submitted.")
		return nil
	}

	sub, rej := s.app.publisher().Submit(publisher.SubmitParams{
		Draft:       res.Draft,
		Transcript:  s.transcript,
		Language:    s.language,
		DialectHint: s.dialect,
	})
	if rej != nil {
		fmt.Printf("Rejected: %v\n", rej.MissingFields)
		return errIncomplete
	}
	fmt.Printf("Submitted: %s (%s)\n", sub.ID, sub.Status)
	return nil
}

func (s *session) capture(ctx context.Context, audioPath string) error {
	if audioPath != "" {
		res, err := s.app.transcribeFile(ctx, audioPath)
		if err != nil {
			return err
		}
		s.transcript, s.language, s.dialect = res.Transcript, res.Language, res.DialectHint()
		fmt.Printf("Transcript (%s):\n%s\n", res.Language, res.Transcript)
		return nil
	}
	for strings.TrimSpace(s.transcript) == "" {
		text, err := s.prompt("Describe your idea: ")
		if err != nil {
			return err
		}
		s.transcript = text
	}
	s.language = stt.DetectScript(s.transcript)
	s.dialect = stt.Result{Language: s.language}.DialectHint()
	return nil
}

func (s *session) extract(ctx context.Context) (generator.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.app.cfg.Server.RequestTimeout.Std())
	defer cancel()
	return s.agent.Extract(ctx, generator.ExtractInput{
		Transcript:   s.transcript,
		LanguageHint: s.language,
		DialectHint:  s.dialect,
	})
}

func (s *session) clarify(ctx context.Context, prev generator.Result, answers string) (generator.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.app.cfg.Server.RequestTimeout.Std())
	defer cancel()
	return s.agent.Clarify(ctx, generator.ClarifyInput{
		Draft:     prev.Draft,
		Answers:   answers,
		Questions: prev.Questions,
	})
}
