package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TotalQuestions is the fixed length of every OMR sheet.
const TotalQuestions = 100

// AnswerKey maps every question number 1..TotalQuestions to its official answer.
// An empty answer means the question is unset. The zero value is a valid key
// with every question unset.
type AnswerKey struct {
	answers [TotalQuestions]string
}

// NewAnswerKey builds a key from a sparse mapping. Question numbers outside
// 1..TotalQuestions are ignored.
func NewAnswerKey(answers map[int]string) AnswerKey {
	var k AnswerKey
	for q, a := range answers {
		k.Set(q, a)
	}
	return k
}

// Get returns the answer for question q, or "" when q is out of range.
func (k AnswerKey) Get(q int) string {
	if q < 1 || q > TotalQuestions {
		return ""
	}
	return k.answers[q-1]
}

// Set stores the answer for question q and reports whether q was in range.
func (k *AnswerKey) Set(q int, answer string) bool {
	if q < 1 || q > TotalQuestions {
		return false
	}
	k.answers[q-1] = answer
	return true
}

// Map returns a copy of the key with all TotalQuestions entries.
func (k AnswerKey) Map() map[int]string {
	m := make(map[int]string, TotalQuestions)
	for i, a := range k.answers {
		m[i+1] = a
	}
	return m
}

// MarshalJSON writes the key as an object ordered by ascending question number.
func (k AnswerKey) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range k.answers {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(i + 1)))
		buf.WriteByte(':')
		v, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by question number. It is the inverse of
// MarshalJSON and is strict: this is the storage format, not the upload format.
func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var next AnswerKey
	for key, a := range raw {
		q, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("answer key: invalid question number %q", key)
		}
		if !next.Set(q, a) {
			return fmt.Errorf("answer key: question %d out of range", q)
		}
	}
	*k = next
	return nil
}

// StoredAnswerKey is the current answer key of a batch.
type StoredAnswerKey struct {
	ID        string
	BatchID   string
	CollegeID string
	Key       AnswerKey
	Format    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
