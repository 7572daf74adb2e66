package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/secretseed/internal/config"
	dserrors "github.com/systmms/secretseed/internal/errors"
	"github.com/systmms/secretseed/pkg/secretgen"
)

func NewGenerateCommand(cfg *config.Config) *cobra.Command {
	var (
		length             int
		excludeCharacters  string
		excludeLowercase   bool
		excludeUppercase   bool
		excludeNumbers     bool
		excludePunctuation bool
		includeSpace       bool
		requireEachType    bool
		templateJSON       string
		templateKey        string
		count              int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate secret values to stdout",
		Long: `Generate one or more cryptographically secure random values without
touching any configuration or sink.

Only the generated values go to stdout, one per line, so the command
composes safely in scripts. All diagnostics go to stderr.

Examples:
  # A 32-character value over letters, digits, and punctuation
  secretseed generate

  # A 24-character alphanumeric value with every class represented
  secretseed generate --length 24 --exclude-punctuation --require-each-included-type

  # Exclude characters that tend to break connection strings
  secretseed generate --exclude-characters '@:/?#[]'

  # Merge into a JSON template
  secretseed generate --template '{"username":"admin"}' --template-key password

  # Use in scripts
  export DB_PASSWORD=$(secretseed generate --length 20 --exclude-punctuation)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return dserrors.UserError{
					Message:    "Count must be at least 1",
					Suggestion: "Use --count N to generate N independent values",
				}
			}
			if templateKey != "" && templateJSON == "" {
				return dserrors.UserError{
					Message:    "A template key without a template has no effect",
					Suggestion: "Provide --template '<json object>' together with --template-key",
				}
			}

			req := secretgen.Request{
				Length: length,
				Policy: secretgen.Policy{
					ExcludeLowercase:   excludeLowercase,
					ExcludeUppercase:   excludeUppercase,
					ExcludeNumbers:     excludeNumbers,
					ExcludePunctuation: excludePunctuation,
					IncludeSpace:       includeSpace,
					ExcludeCharacters:  excludeCharacters,
				},
				RequireEachIncludedType: requireEachType,
				SecretStringTemplate:    templateJSON,
				GenerateStringKey:       templateKey,
			}

			for i := 0; i < count; i++ {
				value, err := secretgen.Generate(req)
				if err != nil {
					return err
				}
				fmt.Println(secretgen.MergeTemplate(req.SecretStringTemplate, req.GenerateStringKey, value))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&length, "length", 0, "Value length (default 32)")
	cmd.Flags().StringVar(&excludeCharacters, "exclude-characters", "", "Characters to exclude from every class")
	cmd.Flags().BoolVar(&excludeLowercase, "exclude-lowercase", false, "Exclude lowercase letters")
	cmd.Flags().BoolVar(&excludeUppercase, "exclude-uppercase", false, "Exclude uppercase letters")
	cmd.Flags().BoolVar(&excludeNumbers, "exclude-numbers", false, "Exclude digits")
	cmd.Flags().BoolVar(&excludePunctuation, "exclude-punctuation", false, "Exclude punctuation characters")
	cmd.Flags().BoolVar(&includeSpace, "include-space", false, "Include the space character")
	cmd.Flags().BoolVar(&requireEachType, "require-each-included-type", false, "Require at least one character from each enabled class")
	cmd.Flags().StringVar(&templateJSON, "template", "", "JSON object template to merge the value into")
	cmd.Flags().StringVar(&templateKey, "template-key", "", "Key the value is injected under in the template")
	cmd.Flags().IntVar(&count, "count", 1, "Number of independent values to generate")

	return cmd
}
