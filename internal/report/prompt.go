package report

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/adaian/adreport-cli/internal/ingest"
	"github.com/adaian/adreport-cli/internal/model"
)

// Section is one dataset embedded into the collaborator request.
type Section struct {
	// Title labels the dataset inside the prompt ("CAMPAIGN (Weekly)").
	Title string
	// Body is the CSV text, full or cost-reduced.
	Body string
	// Note is an optional caveat appended below the dataset.
	Note string
	// Cap bounds the embedded body length in runes; 0 means no cap.
	Cap int
}

var krPrinter = message.NewPrinter(language.Korean)

// formatKRW renders an anchor amount as Korean won with grouping, the way
// the summary block presents it to the end user.
func formatKRW(v float64) string {
	return krPrinter.Sprintf("₩%v", number.Decimal(int64(math.Round(v))))
}

func formatCount(v float64) string {
	return krPrinter.Sprintf("%v", number.Decimal(int64(math.Round(v))))
}

// anchorBlock renders the mandatory pre-computed totals. The collaborator is
// instructed to copy these verbatim; its own arithmetic never overrides them.
func anchorBlock(family model.Family, t *ingest.Totals) string {
	var b strings.Builder
	b.WriteString("**MANDATORY: USE THESE PRE-CALCULATED TOTALS VERBATIM. DO NOT RECALCULATE OR HALLUCINATE NUMBERS.**\n")
	fmt.Fprintf(&b, "- Total Cost: %s\n", formatKRW(t.Cost))
	fmt.Fprintf(&b, "- Total Revenue: %s\n", formatKRW(t.Revenue))
	fmt.Fprintf(&b, "- Total Conversions: %s\n", formatCount(t.Conversions))
	fmt.Fprintf(&b, "- Total Clicks: %s\n", formatCount(t.Clicks))
	fmt.Fprintf(&b, "- Total ROAS: %.2f%%\n", t.Roas)
	if family == model.FamilyGFA {
		fmt.Fprintf(&b, "- Avg CPM: %.0f\n", t.CPM)
		fmt.Fprintf(&b, "- Avg CTR: %.2f%%\n", t.CTR)
		fmt.Fprintf(&b, "- Avg CPC: %.0f\n", t.CPC)
		fmt.Fprintf(&b, "- Avg CVR (Conv/Click): %.2f%%\n", t.CVR)
	}
	return b.String()
}

const searchInstructions = `--- ANALYSIS INSTRUCTIONS (STRICTLY FOLLOW) ---

1. **Summary**: Use the provided pre-calculated totals.
2. **Trend Data (Weekly)**: The 'name' field MUST be the Date/Week string from the campaign data. Aggregate ALL campaigns per week for that week's cost and ROAS.
3. **Device Performance**: Recalculate PC and Mobile ROAS from summed revenue over summed cost per device. DO NOT average the per-row ROAS percentages.
4. **Deep Insights & Critical Issues (LONG FORM)**: For each critical issue and action item write 3-4 detailed sentences covering cause, effect and the specific fix inside Naver Ad Manager.
5. **Top Keywords**: Return the pre-filtered high-spend keyword list provided; suggest expansion keywords and negative keywords from it.`

const gfaInstructions = `--- ANALYSIS REQUIREMENTS (VERY IMPORTANT) ---

1. **Summary & Funnel Diagnosis**: Diagnose the funnel CPM -> CTR -> CPC -> CVR -> ROAS and identify the bottleneck.
2. **Critical Issues**: Name specific creatives with high spend but low ROAS or CTR, fatigued creatives (frequency > 3~4 with declining CTR), and ad-group/age/gender combinations with high spend and low ROAS.
3. **Action Items**: Concrete OFF actions (what to pause), SCALE actions (where to add budget), and creative refreshes where fatigue shows.
4. **Creative Analysis**: Sort creativeStats by cost, high to low.
5. **Audience Analysis**: audienceAgeStats aggregated by age group and audienceMediaStats by media/platform/OS, both sorted by cost high to low.`

// BuildPrompt assembles the single collaborator request: persona, locale
// requirement, anchor block, datasets, instructions and schema.
func BuildPrompt(family model.Family, totals *ingest.Totals, sections []Section) string {
	var b strings.Builder

	switch family {
	case model.FamilyGFA:
		b.WriteString("You are AdAiAn, a Naver GFA (display ads) expert analyst for Korean brands.\n")
	default:
		b.WriteString("You are AdAiAn, a high-end advertising AI analyst expert in Naver Search Ads (South Korea).\n")
	}
	b.WriteString("Analyze the provided CSV data and produce a professional, in-depth report.\n\n")
	b.WriteString("IMPORTANT: ALL OUTPUT MUST BE IN KOREAN. (한국어로 작성해주세요)\n\n")

	if totals != nil {
		b.WriteString(anchorBlock(family, totals))
		b.WriteString("\n")
	}

	b.WriteString("DATASETS:\n")
	for i, s := range sections {
		fmt.Fprintf(&b, "%d. **%s**:\n%s\n", i+1, s.Title, truncateRunes(s.Body, s.Cap))
		if s.Note != "" {
			fmt.Fprintf(&b, "*(%s)*\n", s.Note)
		}
		b.WriteString("\n")
	}

	if family == model.FamilyGFA {
		b.WriteString(gfaInstructions)
	} else {
		b.WriteString(searchInstructions)
	}

	b.WriteString("\n\nRETURN JSON ONLY matching this schema (all string values in Korean):\n")
	b.WriteString(SchemaFor(family))
	return b.String()
}

// SchemaFor returns the response schema text for a family.
func SchemaFor(family model.Family) string {
	if family == model.FamilyGFA {
		return gfaSchema
	}
	return searchSchema
}

// truncateRunes caps s at n runes without splitting a multibyte character.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := 0
	for i := range s {
		if runes == n {
			return s[:i]
		}
		runes++
	}
	return s
}
