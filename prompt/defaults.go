package prompt

import "sync"

const (
	systemSuffix = ".system"
	userSuffix   = ".user"
)

// Names of the built-in prompt pairs.
const (
	Sufficiency   = "grade_sufficiency"
	Generation    = "grade_generation"
	Hallucination = "grade_hallucination"
	Relevance     = "grade_relevance"
	MissingQuery  = "missing_query"
	SearchQuery   = "search_query"
	Answer        = "answer"
)

const binaryJSON = `Reply with JSON only, for example {"binary_score": "yes"}.`

var builtins = map[string][2]string{
	Sufficiency: {
		`You grade whether a set of retrieved documents is enough to answer the user's question completely and correctly.
Check that the context holds the concrete facts the question needs: names, numbers, locations, procedures.
Score "yes" only when the answer could be written from this context alone. Score "no" when the context is vague, partial or lacks key details such as the specific company, facility or country the question asks about.
` + binaryJSON,
		"User question: {{.question}}\n\nRetrieved context:\n\n{{.context}}",
	},
	Generation: {
		`You grade an answer produced by a language model on two criteria.
grounded: every claim is supported by the facts below.
answers_question: the answer actually resolves the user's question.
Reply with JSON only, for example {"grounded": "yes", "answers_question": "no"}.`,
		"Facts:\n\n{{.documents}}\n\nQuestion: {{.question}}\n\nGeneration: {{.generation}}",
	},
	Hallucination: {
		`You grade whether a language model answer is supported by a set of facts.
Score "yes" when the answer is grounded in the facts and "no" otherwise.
` + binaryJSON,
		"Set of facts:\n\n{{.documents}}\n\nLLM generation: {{.generation}}",
	},
	Relevance: {
		`You grade whether one retrieved document is relevant to a user question.
The document is relevant when it shares keywords or meaning with the question.
` + binaryJSON,
		"Retrieved document:\n\n{{.document}}\n\nUser question: {{.question}}",
	},
	MissingQuery: {
		`You help search a radiation safety document database holding IAEA standards and Danish legislation.
The context we have does not fully answer the user's question. Write a short search query that would find the missing piece.
Target the missing fact or entity, for example "designated facility radioactive waste Denmark".
Mention the location or scope when the question does.
Output only the query: one short phrase of at most 10 words.`,
		"User question: {{.question}}\n\nContext we already have:\n{{.context}}",
	},
	SearchQuery: {
		`You write a short web search query. Given the user's question and any context we already hold, output one query that would surface the missing or most relevant information.
Use the key terms: topic, location and what is asked for (facility, company, regulation).
Stay under 15 words. When the question is about a specific country, such as Denmark, include it.
Output only the query.`,
		"User question: {{.question}}\n\nContext we already have (from our database):\n{{.context}}",
	},
	Answer: {
		`You answer questions about radiation safety using retrieved context from IAEA standards, Danish legislation and, when present, web search results.
Use only the context. If it does not contain the answer, say that you don't know.
Keep the answer concise and answer in the language of the question.`,
		"{{if .history}}Conversation so far:\n{{.history}}\n\n{{end}}Question: {{.question}}\n\nContext:\n{{.context}}\n\nAnswer:",
	},
}

var (
	defaultOnce    sync.Once
	defaultManager *Manager
)

// Defaults returns a shared manager holding the built-in prompt pairs.
func Defaults() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewDefaults()
	})
	return defaultManager
}

// NewDefaults returns a fresh manager with the built-in prompt pairs, for
// callers that want to override some of them.
func NewDefaults() *Manager {
	m := NewManager()
	for name, pair := range builtins {
		m.MustRegisterString(name+systemSuffix, pair[0])
		m.MustRegisterString(name+userSuffix, pair[1])
	}
	return m
}
