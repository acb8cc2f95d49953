package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/birmacher/ai-commit-generator/client"
	"github.com/birmacher/ai-commit-generator/commit"
	"github.com/birmacher/ai-commit-generator/common"
	"github.com/birmacher/ai-commit-generator/model"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// bodyWidth is the conventional wrap column for commit bodies
const bodyWidth = 72

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a commit message",
	Long: `Generate a commit message from a description of the changes and/or a diff.
The diff is read from --diff-file, use - for stdin. With --server the request
is sent to a running commitgen service, otherwise the provider is called directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}

		serverURL, _ := cmd.Flags().GetString("server")
		result, err := generate(cmd.Context(), serverURL, req)
		if err != nil {
			return errors.New(errorMessage(err))
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		return printResult(cmd.OutOrStdout(), result, asJSON)
	},
}

func requestFromFlags(cmd *cobra.Command) (model.GenerationRequest, error) {
	changes, _ := cmd.Flags().GetString("changes")
	commitType, _ := cmd.Flags().GetString("type")
	extraContext, _ := cmd.Flags().GetString("context")
	diffFile, _ := cmd.Flags().GetString("diff-file")

	diff, err := readDiff(cmd.InOrStdin(), diffFile)
	if err != nil {
		return model.GenerationRequest{}, err
	}

	return model.GenerationRequest{
		Changes:    changes,
		GitDiff:    diff,
		CommitType: commitType,
		Context:    extraContext,
	}, nil
}

// readDiff loads the diff from path, or from stdin when path is "-"
func readDiff(stdin io.Reader, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "read diff from stdin")
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrapf(err, "read diff file %s", path)
		}
		return string(data), nil
	}
}

func generate(ctx context.Context, serverURL string, req model.GenerationRequest) (model.CommitResult, error) {
	if serverURL != "" {
		return client.New(serverURL, client.DefaultRetryConfig()).Generate(ctx, req)
	}

	service, err := newService(settings)
	if err != nil {
		return model.CommitResult{}, err
	}
	return service.Generate(ctx, req)
}

// errorMessage keeps the stable message of pipeline and service errors
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var gerr *commit.GenerationError
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	return err.Error()
}

func printResult(w io.Writer, result model.CommitResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	var b strings.Builder
	b.WriteString(result.CommitMessage)
	b.WriteString("\n")
	if strings.TrimSpace(result.Body) != "" {
		b.WriteString("\n")
		b.WriteString(common.WrapString(result.Body, bodyWidth))
		b.WriteString("\n")
	}
	if len(result.Alternatives) > 0 {
		b.WriteString("\nAlternatives:\n")
		for i, alt := range result.Alternatives {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, alt)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("changes", "c", "", "Description of the changes")
	generateCmd.Flags().StringP("diff-file", "d", "", "File containing a unified diff, - for stdin")
	generateCmd.Flags().StringP("type", "t", "", "Preferred commit type (feat, fix, docs, ...)")
	generateCmd.Flags().String("context", "", "Additional context for the message")
	generateCmd.Flags().StringP("server", "s", "", "Base URL of a running commitgen service")
	generateCmd.Flags().Bool("json", false, "Print the result as JSON")
}
