// Package education provides remediation guidance for detected secret types.
package education

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devshield/devshield/internal/policy"
)

// Tip explains why a secret type is risky and how to handle it instead.
type Tip struct {
	WhyRisky          string `json:"why_risky"`
	SecureAlternative string `json:"secure_alternative"`
	BestPractice      string `json:"best_practice"`
}

// String renders the tip as a CLI block.
func (t Tip) String() string {
	var b strings.Builder
	b.WriteString("=== DevShield Security Education ===\n")
	fmt.Fprintf(&b, "Why risky: %s\n", t.WhyRisky)
	fmt.Fprintf(&b, "Secure alternative: %s\n", t.SecureAlternative)
	fmt.Fprintf(&b, "Best practice: %s\n", t.BestPractice)
	b.WriteString("====================================\n")
	return b.String()
}

const (
	fallbackLanguage = "en"
	defaultKey       = "Default"
)

var messages = map[string]map[string]Tip{
	"en": {
		"API Key": {
			WhyRisky:          "API keys grant access to sensitive services. If leaked, attackers can abuse your account or data.",
			SecureAlternative: "Store API keys in environment variables or a secrets manager, never in code.",
			BestPractice:      "Use .env files, set permissions, and rotate keys regularly. Never commit secrets to version control.",
		},
		"Password": {
			WhyRisky:          "Passwords in code can be easily extracted and misused, leading to account compromise.",
			SecureAlternative: "Use environment variables or a secrets vault to store passwords.",
			BestPractice:      "Never hardcode passwords. Use strong, unique passwords and enable multi-factor authentication.",
		},
		"Token": {
			WhyRisky:          "Tokens can provide direct access to APIs or user data. Leaked tokens can be used for impersonation.",
			SecureAlternative: "Store tokens securely outside of code, e.g., in environment variables.",
			BestPractice:      "Limit token scope, set expirations, and rotate tokens regularly.",
		},
		"Secret Key": {
			WhyRisky:          "Secret keys are used for encryption or authentication. Exposure can break security guarantees.",
			SecureAlternative: "Use a secrets manager or environment variables to store secret keys.",
			BestPractice:      "Restrict access, rotate keys, and audit usage.",
		},
		"OAuth Token": {
			WhyRisky:          "OAuth tokens can be used to impersonate users or access protected resources.",
			SecureAlternative: "Store OAuth tokens in secure storage, never in code or public repos.",
			BestPractice:      "Use short-lived tokens, refresh regularly, and monitor for leaks.",
		},
		"Private Key": {
			WhyRisky:          "Private keys are used for authentication and encryption. Leaked keys can compromise entire systems.",
			SecureAlternative: "Store private keys in secure vaults or hardware security modules.",
			BestPractice:      "Never share private keys. Use passphrases and restrict access.",
		},
		"Database Connection String": {
			WhyRisky:          "Connection strings often contain credentials and host info. Leaks can lead to data breaches.",
			SecureAlternative: "Use environment variables or secret managers for connection strings.",
			BestPractice:      "Limit DB user permissions, rotate credentials, and audit access.",
		},
		"AWS Secret Access Key": {
			WhyRisky:          "AWS keys grant access to cloud resources. Leaked keys can result in major breaches and costs.",
			SecureAlternative: "Use IAM roles and environment variables, never hardcode AWS keys.",
			BestPractice:      "Rotate keys, use least privilege, and enable CloudTrail monitoring.",
		},
		"JWT": {
			WhyRisky:          "JWTs can be used to impersonate users or escalate privileges if leaked.",
			SecureAlternative: "Store JWTs securely in HTTP-only cookies or secure storage.",
			BestPractice:      "Set short expirations, use strong signing keys, and validate tokens.",
		},
		"Hardcoded IP Address": {
			WhyRisky:          "Hardcoded IPs can make systems brittle and expose internal infrastructure.",
			SecureAlternative: "Use configuration files or environment variables for endpoints.",
			BestPractice:      "Document endpoints, avoid hardcoding, and use DNS where possible.",
		},
		"Hardcoded Email": {
			WhyRisky:          "Hardcoded emails can leak user info and are hard to update.",
			SecureAlternative: "Store emails in config or environment variables.",
			BestPractice:      "Avoid hardcoding PII. Use placeholders in code.",
		},
		defaultKey: {
			WhyRisky:          "Sensitive values in code can be discovered and exploited.",
			SecureAlternative: "Store all secrets outside of codebase.",
			BestPractice:      "Scan code for secrets before committing.",
		},
	},
	"hi": {
		"API Key": {
			WhyRisky:          "API कुंजी संवेदनशील सेवाओं तक पहुँच प्रदान करती है। यदि लीक हो जाए, तो हमलावर आपके खाते या डेटा का दुरुपयोग कर सकते हैं।",
			SecureAlternative: "API कुंजी कोड में नहीं, बल्कि environment variables या secrets manager में रखें।",
			BestPractice:      ".env फ़ाइलें उपयोग करें, अनुमतियाँ सेट करें, और नियमित रूप से कुंजी बदलें। कभी भी secrets को version control में न डालें।",
		},
		defaultKey: {
			WhyRisky:          "कोड में संवेदनशील मान पाए जाने और दुरुपयोग की संभावना होती है।",
			SecureAlternative: "सभी secrets को कोडबेस के बाहर रखें।",
			BestPractice:      "commit करने से पहले कोड को secrets के लिए स्कैन करें।",
		},
	},
}

// Message returns guidance for secretType in lang. Unknown languages fall
// back to English and unknown types to the default tip. When ctx names a
// variable it is appended to WhyRisky.
func Message(secretType string, ctx policy.Context, lang string) Tip {
	set, ok := messages[lang]
	if !ok {
		set = messages[fallbackLanguage]
	}
	tip, ok := set[secretType]
	if !ok {
		tip = set[defaultKey]
	}
	if ctx.VariableName != "" {
		tip.WhyRisky += fmt.Sprintf(" (Found in variable: %s)", ctx.VariableName)
	}
	return tip
}

// Languages lists the supported language codes.
func Languages() []string {
	out := make([]string, 0, len(messages))
	for l := range messages {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Types lists the secret types with dedicated English guidance.
func Types() []string {
	out := make([]string, 0, len(messages[fallbackLanguage]))
	for k := range messages[fallbackLanguage] {
		if k != defaultKey {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
