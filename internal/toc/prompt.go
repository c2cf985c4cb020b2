package toc

import "fmt"

func detectPrompt(content string) string {
	return fmt.Sprintf(`Your job is to detect if there is a table of content provided in the given text.

Given text: %s

return the following JSON format:
{
    "thinking": <why do you think there is a table of content in the given text>,
    "toc_detected": "<yes or no>",
}

Directly return the final JSON structure. Do not output anything else.
Please note: abstract, summary, notation list, figure list, table list, etc. are not table of contents.`, content)
}

func pageNumbersPrompt(tocContent string) string {
	return fmt.Sprintf(`You will be given a table of contents.

Your job is to detect if there are page numbers/indices given within the table of contents.

Given text: %s

Reply format:
{
    "thinking": <why do you think there are page numbers/indices given within the table of contents>
    "page_index_given_in_toc": "<yes or no>"
}
Directly return the final JSON structure. Do not output anything else.`, tocContent)
}

func extractPrompt(content string) string {
	return fmt.Sprintf(`Your job is to extract the full table of contents from the given text, replace ... with :

Given text: %s

Directly return the full table of contents content. Do not output anything else.`, content)
}

func extractCompletePrompt(content, tocContent string) string {
	return fmt.Sprintf(`You are given a partial document and a table of contents.
Your job is to check if the table of contents is complete, which it contains all the main sections in the partial document.

Reply format:
{
    "thinking": <why do you think the table of contents is complete or not>
    "completed": "yes" or "no"
}
Directly return the final JSON structure. Do not output anything else.
 Document:
%s
 Table of contents:
%s`, content, tocContent)
}

func transformPrompt(tocContent string) string {
	return fmt.Sprintf(`You are given a table of contents, your job is to transform the whole table of contents into a JSON format included table_of_contents.

structure is the numeric system which represents the index of the hierarchy section in the table of contents. For example, the first section has structure index 1, the first subsection has structure index 1.1, the second subsection has structure index 1.2, etc.

The response should be in the following JSON format:
{
  "table_of_contents": [
    {
        "structure": <structure index, "x.x.x" or None> (string),
        "title": <title of the section>,
        "page": <page number or None>,
    },
    ...
  ],
}
You should transform the full table of contents in one go.
Directly return the final JSON structure, do not output anything else.

Given table of contents:
%s`, tocContent)
}

func transformCompletePrompt(rawTOC, cleaned string) string {
	return fmt.Sprintf(`You are given a raw table of contents and a cleaned table of contents.
Your job is to check if the cleaned table of contents is complete.

Reply format:
{
    "thinking": <why do you think the cleaned table of contents is complete or not>
    "completed": "yes" or "no"
}
Directly return the final JSON structure. Do not output anything else.
 Raw Table of contents:
%s
 Cleaned Table of contents:
%s`, rawTOC, cleaned)
}
