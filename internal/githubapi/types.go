// Package githubapi provides minimal GitHub REST API models.
package githubapi

// PullRequest carries the pull request fields the compliance checks read.
type PullRequest struct {
	// Number is the pull request number.
	Number int `json:"number"`
	// Title is the pull request title.
	Title string `json:"title"`
	// Body is the raw markdown body; GitHub returns null for empty bodies.
	Body string `json:"body"`
}

// Commit is one commit of a pull request, flattened from the REST shape.
type Commit struct {
	// SHA is the full commit hash.
	SHA string
	// Message is the full commit message.
	Message string
}

// IssueComment is a comment on the pull request conversation.
type IssueComment struct {
	// ID is the comment database ID.
	ID int64
	// Body is the raw markdown body of the comment.
	Body string
}

type commitNode struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
	} `json:"commit"`
}

type commentNode struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}
