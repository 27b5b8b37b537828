package ai

import "fmt"

func textLengthInstruction(l Length) string {
	switch l {
	case LengthShort:
		return "in 2-3 sentences"
	case LengthLong:
		return "in 3-4 paragraphs with detailed key points"
	default:
		return "in 1-2 paragraphs"
	}
}

func pdfLengthInstruction(l Length) string {
	switch l {
	case LengthShort:
		return "in 2-3 sentences"
	case LengthLong:
		return "in 3-4 paragraphs with detailed analysis"
	default:
		return "in 1-2 paragraphs"
	}
}

var summaryFocus = map[Focus]string{
	FocusGeneral:   "Provide a comprehensive overview covering the main themes, important points, and overall message of the document.",
	FocusAcademic:  "Focus on research methodology, findings, conclusions, and academic significance. Highlight any data, statistics, or research contributions.",
	FocusBusiness:  "Focus on business implications, actionable insights, financial impacts, strategic recommendations, and market opportunities.",
	FocusTechnical: "Focus on technical specifications, implementation details, processes, methodologies, and technical requirements.",
	FocusExecutive: "Provide a high-level executive overview focusing on key decisions, outcomes, recommendations, and strategic implications.",
}

var keyPointsFocus = map[Focus]string{
	FocusGeneral:   "Extract the most important and relevant points from the document.",
	FocusAcademic:  "Focus on research objectives, methodology, key findings, conclusions, and academic contributions.",
	FocusBusiness:  "Focus on business insights, actionable recommendations, financial implications, and strategic points.",
	FocusTechnical: "Focus on technical specifications, processes, requirements, and implementation details.",
	FocusExecutive: "Focus on high-level strategic points, decisions, outcomes, and recommendations for leadership.",
}

func focusInstruction(table map[Focus]string, f Focus) string {
	if s, ok := table[f]; ok {
		return s
	}
	return table[FocusGeneral]
}

// SummaryPrompt builds the plain-text summary instruction.
func SummaryPrompt(text string, length Length) string {
	return fmt.Sprintf("Please summarize the following text %s. Focus on the main ideas and key points:\n\n%s",
		textLengthInstruction(length), text)
}

func KeyPointsPrompt(text string) string {
	return "Extract the key points from the following text and present them as a bulleted list:\n\n" + text
}

func PDFSummaryPrompt(text string, length Length, focus Focus) string {
	return fmt.Sprintf("Please analyze and summarize the following PDF document content %s. \n\n%s\n\nDocument Content:\n%s\n\n"+
		"Please provide a clear, well-structured summary that captures the essence of the document according to the specified focus area.",
		pdfLengthInstruction(length), focusInstruction(summaryFocus, focus), text)
}

func PDFKeyPointsPrompt(text string, focus Focus) string {
	return fmt.Sprintf("Extract the key points from the following PDF document content and present them as a well-organized bulleted list.\n\n%s\n\nDocument Content:\n%s\n\n"+
		"Please organize the key points in a logical structure with clear bullet points, ensuring each point is concise but informative.",
		focusInstruction(keyPointsFocus, focus), text)
}
