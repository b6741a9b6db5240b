package phonetic

import "context"

// UnknownClass is the label LingPy assigns to tokens it cannot classify
const UnknownClass = "0"

// Classifier assigns a sound class to every token, in order
type Classifier interface {
	Classify(ctx context.Context, tokens []string) ([]string, error)
}

// Func adapts a per-token function to Classifier
type Func func(token string) string

// Classify implements Classifier
func (f Func) Classify(_ context.Context, tokens []string) ([]string, error) {
	classes := make([]string, len(tokens))
	for i, token := range tokens {
		classes[i] = f(token)
	}
	return classes, nil
}

// Map classifies with a fixed table; unlisted tokens are UnknownClass
type Map map[string]string

// Classify implements Classifier
func (m Map) Classify(_ context.Context, tokens []string) ([]string, error) {
	classes := make([]string, len(tokens))
	for i, token := range tokens {
		if class, ok := m[token]; ok {
			classes[i] = class
		} else {
			classes[i] = UnknownClass
		}
	}
	return classes, nil
}
