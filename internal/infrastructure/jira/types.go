package jira

type createIssueBody struct {
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Project     projectField `json:"project"`
	Summary     string       `json:"summary"`
	Description adfDocument  `json:"description"`
	IssueType   nameField    `json:"issuetype"`
	DueDate     string       `json:"duedate,omitempty"`
	Priority    *nameField   `json:"priority,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
}

type projectField struct {
	Key string `json:"key"`
}

type nameField struct {
	Name string `json:"name"`
}

type createIssueResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Jira Cloud v3 requires descriptions in Atlassian Document Format.
type adfDocument struct {
	Type    string         `json:"type"`
	Version int            `json:"version"`
	Content []adfParagraph `json:"content"`
}

type adfParagraph struct {
	Type    string    `json:"type"`
	Content []adfText `json:"content,omitempty"`
}

type adfText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func adfFromText(text string) adfDocument {
	paragraph := adfParagraph{Type: "paragraph"}
	if text != "" {
		paragraph.Content = []adfText{{Type: "text", Text: text}}
	}
	return adfDocument{
		Type:    "doc",
		Version: 1,
		Content: []adfParagraph{paragraph},
	}
}
