package extraction

import "strings"

// BuildPrompt asks the model for a single JSON object describing the transaction.
// Known account names are listed so the model picks one of them verbatim.
func BuildPrompt(description string, accounts []string) string {
	var b strings.Builder
	b.WriteString("You extract structured bookkeeping data from a short transaction description.\n\n")
	b.WriteString("Description: \"" + description + "\"\n\n")
	b.WriteString("Respond with ONE JSON object with these keys:\n")
	b.WriteString("- \"type\": string, e.g. \"expense\" or \"income\"\n")
	b.WriteString("- \"amount\": number with at most 2 decimals\n")
	b.WriteString("- \"date\": string \"YYYY-MM-DD\", or null if not stated\n")
	b.WriteString("- \"category\": string\n")
	b.WriteString("- \"account_name\": string, the account the money moved through\n")
	b.WriteString("- \"description\": string, a short clean description\n")

	if len(accounts) > 0 {
		b.WriteString("\nUse ONLY one of these account names:\n")
		for _, name := range accounts {
			b.WriteString("  - " + name + "\n")
		}
	}

	b.WriteString("\nReturn ONLY valid raw JSON. Do NOT wrap the response in code fences.\n")
	return b.String()
}
