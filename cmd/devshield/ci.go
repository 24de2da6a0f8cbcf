package devshield

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const installCmd = "go install github.com/devshield/devshield@latest"

var ciTemplates = map[string]struct {
	path    string
	content string
}{
	"github": {".github/workflows/devshield.yml", `name: DevShield
on: [push, pull_request]
jobs:
  scan:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-go@v5
        with:
          go-version: '1.25'
      - run: ` + installCmd + `
      - run: devshield scan --sarif -o devshield.sarif --fail-on block --no-update-check
      - uses: github/codeql-action/upload-sarif@v3
        if: always()
        with:
          sarif_file: devshield.sarif
`},
	"gitlab": {".gitlab-ci.yml", `stages: [scan]
devshield:
  stage: scan
  image: golang:1.25
  script:
    - ` + installCmd + `
    - devshield scan --json -o devshield.json --fail-on block --no-update-check
  artifacts:
    when: always
    paths:
      - devshield.json
`},
	"bitbucket": {"bitbucket-pipelines.yml", `pipelines:
  default:
    - step:
        name: DevShield Scan
        image: golang:1.25
        script:
          - ` + installCmd + `
          - devshield scan --json -o devshield.json --fail-on block --no-update-check
        artifacts:
          - devshield.json
`},
	"azure": {"azure-pipelines.yml", `trigger:
- main

pool:
  vmImage: 'ubuntu-latest'

steps:
- task: GoTool@0
  inputs:
    version: '1.25.x'
- script: |
    ` + installCmd + `
    devshield scan --json -o devshield.json --fail-on block --no-update-check
  displayName: 'DevShield Scan'
- publish: devshield.json
  artifact: devshield-results
  condition: succeededOrFailed()
`},
}

func init() {
	ci := &cobra.Command{Use: "ci", Short: "CI template helpers for multiple providers"}
	rootCmd.AddCommand(ci)

	var provider string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a CI pipeline template for your provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tpl, ok := ciTemplates[provider]
			if !ok {
				return fmt.Errorf("unknown --provider %q. Supported: github, gitlab, bitbucket, azure", provider)
			}
			if err := os.MkdirAll(filepath.Dir(tpl.path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(tpl.path, []byte(tpl.content), 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", tpl.path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&provider, "provider", "", "CI provider: github | gitlab | bitbucket | azure")
	_ = initCmd.MarkFlagRequired("provider")
	ci.AddCommand(initCmd)
}
