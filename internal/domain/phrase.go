package domain

// Phrase is one entry of the phrase-answer table as stored in DynamoDB.
type Phrase struct {
	PK     string
	SK     string
	Key    string
	Answer string
}
