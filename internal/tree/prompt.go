package tree

import "fmt"

func nodeSummaryPrompt(nodeText string) string {
	return fmt.Sprintf(`You are given a part of a document, your task is to generate a description of the partial document about what are main points covered in the partial document.

Partial Document Text: %s

Directly return the description, do not include any other text.
`, nodeText)
}

func docDescriptionPrompt(outline string) string {
	return fmt.Sprintf(`Your are an expert in generating descriptions for a document.
You are given a structure of a document. Your task is to generate a one-sentence description for the document, which makes it easy to distinguish the document from other documents.

Document Structure: %s

Directly return the description, do not include any other text.
`, outline)
}
