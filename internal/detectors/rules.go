package detectors

import "regexp"

// Secret type labels produced by the matcher.
const (
	LabelAPIKey              = "API Key"
	LabelSecretKey           = "Secret Key"
	LabelToken               = "Token"
	LabelPassword            = "Password"
	LabelAWSAccessKeyID      = "AWS Access Key ID"
	LabelAWSSecretAccessKey  = "AWS Secret Access Key"
	LabelGoogleAPIKey        = "Google API Key"
	LabelAzureStorageKey     = "Azure Storage Key"
	LabelJWT                 = "JWT"
	LabelOAuthClientSecret   = "OAuth Client Secret"
	LabelDatabasePassword    = "Database Password"
	LabelSlackToken          = "Slack Token"
	LabelCloudProviderSecret = "Cloud Provider Secret"
	LabelHighEntropy         = "High-entropy string"
)

// Rule is one labeled secret shape. When the pattern has capture groups the
// last group holds the secret value, otherwise the whole match does.
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
}

// group returns the submatch index holding the secret value, or 0 for the
// whole match.
func (r Rule) group() int {
	return r.Pattern.NumSubexp()
}

// rules is evaluated top to bottom; order is part of the output contract.
var rules = []Rule{
	{LabelAPIKey, regexp.MustCompile(`(?i)api[_-]?key["']?\s*[:=]\s*["']([A-Za-z0-9\-_=]{16,})["']`)},
	{LabelSecretKey, regexp.MustCompile(`(?i)secret[_-]?key["']?\s*[:=]\s*["']([A-Za-z0-9\-_=]{16,})["']`)},
	{LabelToken, regexp.MustCompile(`(?i)token["']?\s*[:=]\s*["']([A-Za-z0-9\-_=]{16,})["']`)},
	{LabelPassword, regexp.MustCompile(`(?i)password["']?\s*[:=]\s*["'](.{8,})["']`)},
	{LabelAWSAccessKeyID, regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{LabelAWSSecretAccessKey, regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key["']?\s*[:=]\s*["']([A-Za-z0-9/+=]{40})["']`)},
	{LabelGoogleAPIKey, regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`)},
	{LabelAzureStorageKey, regexp.MustCompile(`(?i)azure[_-]?storage[_-]?key["']?\s*[:=]\s*["']([A-Za-z0-9+/=]{88})["']`)},
	{LabelJWT, regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+?\.[A-Za-z0-9\-_]+?\.[A-Za-z0-9\-_]+`)},
	{LabelOAuthClientSecret, regexp.MustCompile(`(?i)client[_-]?secret["']?\s*[:=]\s*["']([A-Za-z0-9\-_=]{16,})["']`)},
	{LabelDatabasePassword, regexp.MustCompile(`(?i)(?:db|database|sql|mysql|postgres)[_-]?password["']?\s*[:=]\s*["'](.{8,})["']`)},
	{LabelSlackToken, regexp.MustCompile(`xox[baprs]-([0-9a-zA-Z]{10,48})`)},
	{LabelCloudProviderSecret, regexp.MustCompile(`(?i)(?:cloud|provider)[_-]?secret["']?\s*[:=]\s*["']([A-Za-z0-9\-_=]{16,})["']`)},
}

var reOpaqueToken = regexp.MustCompile(`[A-Za-z0-9\-_=]{16,}`)

// Rules returns a copy of the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Labels returns every secret type label the matcher can emit, in rule
// order followed by the high-entropy label.
func Labels() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.Label)
	}
	return append(out, LabelHighEntropy)
}
