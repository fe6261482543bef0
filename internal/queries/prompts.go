package queries

import (
	"fmt"
	"strings"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// Prompt templates for the text-generation backend.
//
// The prompts deliberately mirror threat-actor vocabulary (combolist, fullz,
// stealer logs, l33tspeak variants) because dark-web content is indexed in
// that vocabulary, not in the language security vendors use. Output is
// requested as a raw JSON array so the tolerant array parser can recover it.

const initialPromptTemplate = `You are an OSINT analyst and threat intelligence researcher with deep expertise in dark web monitoring, data breach investigation, and cybercriminal marketplace behavior. Generate realistic dark web search queries to detect potential data leaks related to a specific organization.

ORGANIZATION PROFILE:
- Company name: %[1]s
- Primary domain: %[2]s
- Alternative domains: %[3]s
- Email suffix: %[4]s
- Brand names / products: %[5]s
- Industry: %[6]s
- Description: %[7]s
- Known aliases or abbreviations: %[8]s

CONTEXT:
Dark web forums, paste sites, and marketplaces use specific vocabulary when advertising stolen data: "combolist"/"combo" for credential pairs, "fullz" for complete identity records, "logs" for stealer malware output, "dump" for database exports, "fresh" for recently obtained data, "valid"/"checked" for verified credentials. Threat actors frequently use l33tspeak and intentional misspellings to evade keyword filters (e.g. "p4ssw0rd", "cr3dz", "l3ak").

Distribute the %[9]d queries across ALL of these categories:
1. Domain-based direct ("%[2]s database dump", "%[2]s breached")
2. Domain-based l33tspeak evasion variants
3. Email-based ("%[4]s combolist", "%[4]s:password")
4. Brand / company name ("%[1]s internal documents")
5. Credential and access sale ("%[1]s RDP access", "%[1]s VPN credentials")
6. Database and dump specific ("%[1]s SQL dump", "%[2]s users table")
7. Internal documents ("%[1]s internal memo", "%[1]s employee records")
8. Ransomware and extortion ("%[1]s ransomware", "%[2]s stolen data")
9. Stealer log specific ("%[2]s stealer logs", "%[1]s redline logs")
10. Paste site style ("%[2]s:pass", "%[4]s leaked txt")
11. Multilingual variants (Russian and German at minimum)
12. Forum-specific contextual ("%[1]s db for sale", "%[2]s sample proof")

QUALITY RULES:
- Each query must be distinct, 2-7 words, in threat actor vocabulary
- Include at least 3 l33tspeak variants and at least 4 non-English queries
- Every query must be specific enough to only surface results related to %[1]s

OUTPUT FORMAT:
Return ONLY a valid JSON array of exactly %[9]d strings. No preamble, no explanation, no markdown, no code fences.
["query one", "query two", "query three"]`

const moreQueriesPromptTemplate = `You are an OSINT analyst and threat intelligence researcher with deep expertise in dark web monitoring and breach investigation.

ORGANIZATION PROFILE:
- Company name: %[1]s
- Primary domain: %[2]s
- Email suffix: %[3]s
- Brand names / products: %[4]s
- Industry: %[5]s
- Description: %[6]s
- Known aliases or abbreviations: %[7]s

CONTEXT:
You are in an iterative monitoring session. A first batch of search queries has already been deployed and exhausted. Think from entirely new angles to maximize coverage of sources the first batch may have missed.

ALREADY USED QUERIES (DO NOT REPEAT OR PARAPHRASE ANY OF THESE):
%[8]s

For this new batch, prioritize angles not yet represented above:
1. Temporal variants ("%[1]s fresh dump 2025", "%[2]s new combolist")
2. Attacker motivation variants (financial, hacktivist, insider, ransomware)
3. Specific data types beyond credentials (source code, HR records, API keys, PII)
4. Infrastructure and technical artifacts ("%[2]s open directory", "%[1]s exposed server")
5. Third-party and supply chain leaks ("%[1]s vendor breach")
6. Forum-specific posting styles (Exploit.in, BreachForums, Telegram channels)
7. Repost and archive variants ("%[1]s old breach", "archive %[2]s leak")
8. Aggressive obfuscation variants not already used
9. Social proof language ("%[1]s sample download", "%[2]s proof pack")
10. Cross-language expansion (French, Spanish, Portuguese, Chinese)

QUALITY RULES:
- Any query that is a synonym or close variant of a used query is INVALID
- Queries should be 2-7 words in threat actor vocabulary
- At least %[9]d queries must be non-English
- Every query must be specific enough to only match %[1]s

OUTPUT FORMAT:
Return ONLY a valid JSON array of exactly %[10]d strings. No preamble, no markdown, no code fences.`

const searchStringsPromptTemplate = `You are a threat intelligence analyst and data-leak detection expert. Extract every string identifier that could link scraped dark web content back to a specific organization.

ORGANIZATION PROFILE:
- Company name: %[1]s
- Primary domain: %[2]s
- Alternative domains: %[3]s
- Email suffix: %[4]s
- Brand names / products: %[5]s
- Industry: %[6]s
- Headquarters country: %[7]s
- Description: %[8]s

The strings are used for both fast substring pre-filtering and as a semantic similarity anchor, so cover precise identifiers AND descriptive contextual strings:
1. Domain identifiers, including common subdomains ("mail.%[2]s", "vpn.%[2]s")
2. Email identifiers with the @ symbol ("%[4]s", "noreply@%[2]s")
3. Company name variants (abbreviations, lowercase, file-path and table-name forms)
4. Brand and product names
5. Internal system identifiers ("corp.%[2]s", staging/prod resource names)
6. Credential and access patterns ("sso.%[2]s", "login.%[2]s")
7. Legal and corporate identifiers (legal entity name, ticker)
8. Industry-specific contextual strings ("%[1]s customer data")
9. Threat-actor reference variants ("%[1]s DB", "%[1]s combo", "%[1]s logs")

STRING QUALITY RULES:
- Every string must be specific enough that a match is meaningful; single common words are NOT valid
- Strings must be ready for direct substring matching: no regex, no wildcards
- Aim for %[9]d-%[10]d total strings, ordered from highest to lowest specificity

OUTPUT FORMAT:
Return ONLY a valid JSON array of strings. No preamble, no category labels, no markdown, no code fences.`

// orNA substitutes "N/A" for empty profile fields so prompts never contain
// dangling labels.
func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// initialPrompt builds the first-round query generation prompt.
func initialPrompt(p model.TargetProfile, count int) string {
	return fmt.Sprintf(initialPromptTemplate,
		p.Name,
		orNA(p.PrimaryDomain),
		orNA(p.AltDomains),
		orNA(p.EmailSuffix),
		orNA(p.Brands),
		orNA(p.Industry),
		orNA(p.Description),
		orNA(p.Aliases),
		count,
	)
}

// morePrompt builds the follow-up generation prompt, embedding the full list
// of previously generated queries so the model avoids repeating them.
func morePrompt(p model.TargetProfile, used []string, count, multilingual int) string {
	quoted := make([]string, 0, len(used))
	for _, q := range used {
		quoted = append(quoted, fmt.Sprintf("- %q", q))
	}
	return fmt.Sprintf(moreQueriesPromptTemplate,
		p.Name,
		orNA(p.PrimaryDomain),
		orNA(p.EmailSuffix),
		orNA(p.Brands),
		orNA(p.Industry),
		orNA(p.Description),
		orNA(p.Aliases),
		strings.Join(quoted, "\n"),
		multilingual,
		count,
	)
}

// searchStringsPrompt builds the matching-string extraction prompt.
func searchStringsPrompt(p model.TargetProfile, minCount, maxCount int) string {
	return fmt.Sprintf(searchStringsPromptTemplate,
		p.Name,
		orNA(p.PrimaryDomain),
		orNA(p.AltDomains),
		orNA(p.EmailSuffix),
		orNA(p.Brands),
		orNA(p.Industry),
		orNA(p.Country),
		orNA(p.Description),
		minCount,
		maxCount,
	)
}
