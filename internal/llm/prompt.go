package llm

import "fmt"

// SummaryPrompt builds the summarization prompt for a paper. The
// instruction asks for 3-4 sentences covering objective, methodology and
// findings in language accessible to graduate students.
func SummaryPrompt(title, abstract string) string {
	return fmt.Sprintf(
		"You are a research assistant. Summarize this academic paper in 3-4 clear sentences. "+
			"Focus on: (1) the research objective, (2) the methodology, (3) key findings. "+
			"Use simple language accessible to graduate students.\n\n"+
			"Title: %s\n\nAbstract: %s",
		title, abstract,
	)
}
