package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/BradenHooton/passguard/pkg/password"
)

var errMissingPassword = errors.New("a password argument is required")

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "passgen:", err)
		os.Exit(1)
	}
}

// newCommand builds the passgen command tree writing results to out.
func newCommand(out io.Writer) *cli.Command {
	var (
		length    int
		count     int
		sep       string
		wordlist  string
		minLength int
	)

	return &cli.Command{
		Name:   "passgen",
		Usage:  "Generate and check passwords offline",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:  "random",
				Usage: "Generate a random character password",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "length",
						Aliases:     []string{"l"},
						Usage:       fmt.Sprintf("Password length (%d-%d)", password.MinRandomLength, password.MaxRandomLength),
						Value:       password.DefaultRandomLength,
						Destination: &length,
					},
				},
				Action: func(_ context.Context, _ *cli.Command) error {
					pw, err := password.NewGenerator(nil).Random(length)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, pw)
					return err
				},
			},
			{
				Name:  "diceware",
				Usage: "Generate a diceware passphrase",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "count",
						Aliases:     []string{"n"},
						Usage:       fmt.Sprintf("Number of words (%d-%d)", password.MinWordCount, password.MaxWordCount),
						Value:       password.DefaultWordCount,
						Destination: &count,
					},
					&cli.StringFlag{
						Name:        "sep",
						Usage:       "Separator: space, dash, underscore, slash or random",
						Value:       string(password.SeparatorSpace),
						Destination: &sep,
					},
					&cli.StringFlag{
						Name:        "wordlist",
						Usage:       "Path to a diceware word list",
						Sources:     cli.EnvVars("DICEWARE_WORDLIST"),
						Destination: &wordlist,
					},
				},
				Action: func(_ context.Context, _ *cli.Command) error {
					separator, err := password.ParseSeparator(sep)
					if err != nil {
						return err
					}
					words := password.DefaultWords()
					if wordlist != "" {
						if words, err = password.LoadWordlist(wordlist); err != nil {
							return err
						}
					}
					phrase, _, err := password.NewGenerator(words).Diceware(count, separator)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, phrase)
					return err
				},
			},
			{
				Name:      "improve",
				Usage:     "Strengthen an existing password",
				ArgsUsage: "PASSWORD",
				Action: func(_ context.Context, cmd *cli.Command) error {
					pw, err := passwordArg(cmd)
					if err != nil {
						return err
					}
					improved, err := password.NewGenerator(nil).Improve(pw)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, improved)
					return err
				},
			},
			{
				Name:      "check",
				Usage:     "Evaluate a password against the policy",
				ArgsUsage: "PASSWORD",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "min-length",
						Usage:       "Minimum password length",
						Value:       password.DefaultMinLength,
						Sources:     cli.EnvVars("MIN_PASSWORD_LENGTH"),
						Destination: &minLength,
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					pw, err := passwordArg(cmd)
					if err != nil {
						return err
					}
					policy := password.NewPolicy(minLength)
					printCheck(out, policy, policy.Evaluate(pw), password.Analyze(pw))
					return nil
				},
			},
		},
	}
}

func passwordArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 || cmd.Args().First() == "" {
		return "", errMissingPassword
	}
	return cmd.Args().First(), nil
}

func printCheck(out io.Writer, policy password.Policy, a password.Assessment, r password.Report) {
	fmt.Fprintf(out, "strength: %s (%d/%d)\n", a.Strength, a.Score, password.MaxScore)
	if a.Satisfied() {
		fmt.Fprintln(out, "policy:   satisfied")
	} else {
		hints := make([]string, 0, len(a.Missing))
		for _, req := range a.Missing {
			hints = append(hints, req.Describe(policy.MinLength))
		}
		fmt.Fprintf(out, "policy:   %s\n", strings.Join(hints, "; "))
	}

	fmt.Fprintf(out, "entropy:  %.1f bits (%s)\n", r.Entropy, r.Strength)
	fmt.Fprintf(out, "crack:    %s\n", r.CrackTime)
	for _, w := range r.Warnings {
		fmt.Fprintf(out, "warning:  %s\n", w)
	}
	for _, s := range r.Suggestions {
		fmt.Fprintf(out, "tip:      %s\n", s)
	}
}
