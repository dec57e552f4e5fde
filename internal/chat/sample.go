// ABOUTME: Fixed demonstration conversations shown when no live conversation exists
// ABOUTME: Also lists the suggested prompts offered on the welcome screen

package chat

import "time"

// SuggestedPrompts are offered to start a new conversation.
var SuggestedPrompts = []string{
	"What can you help me with?",
	"Tell me a joke",
	"Explain quantum computing",
	"Give me 5 productivity tips",
}

const helpReply = "I can help you with a wide range of tasks! Here are some things I can assist with:\n\n" +
	"## Research & Information\n" +
	"- Answering questions on various topics\n" +
	"- Explaining complex concepts in simple terms\n" +
	"- Providing summaries and analyses\n\n" +
	"## Writing & Communication\n" +
	"- Drafting emails, messages, and documents\n" +
	"- Proofreading and improving text\n" +
	"- Creative writing assistance\n\n" +
	"## Problem Solving\n" +
	"- Breaking down complex problems\n" +
	"- Brainstorming ideas and solutions\n" +
	"- Technical troubleshooting guidance\n\n" +
	"Feel free to ask me anything!"

const quantumReply = "**Quantum computing** is a type of computing that uses the principles of quantum mechanics to process information.\n\n" +
	"### Classical vs Quantum\n" +
	"- **Classical computers** use bits that are either 0 or 1\n" +
	"- **Quantum computers** use **qubits** that can be 0, 1, or both at the same time (superposition)\n\n" +
	"### Key Concepts\n" +
	"1. **Superposition** - A qubit can exist in multiple states simultaneously\n" +
	"2. **Entanglement** - Qubits can be linked so that the state of one instantly affects the other\n" +
	"3. **Interference** - Quantum states can combine to amplify correct answers and cancel wrong ones\n\n" +
	"### Why It Matters\n" +
	"Quantum computers can solve certain problems exponentially faster than classical computers, such as:\n" +
	"- Drug discovery and molecular simulation\n" +
	"- Cryptography and security\n" +
	"- Optimization problems\n" +
	"- Machine learning enhancements\n\n" +
	"Think of it like this: if a classical computer tries every path in a maze one by one, a quantum computer can explore many paths simultaneously."

// sampleConversations builds the demo dataset with timestamps relative to now.
func sampleConversations(now time.Time) []Conversation {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	return []Conversation{
		{
			ID:    "sample-1",
			Title: "What can you help me with?",
			Messages: []Message{
				{ID: "s1-m1", Role: RoleUser, Content: "What can you help me with?", Timestamp: ago(300 * time.Second)},
				{ID: "s1-m2", Role: RoleAssistant, Content: helpReply, Timestamp: ago(298 * time.Second)},
			},
			CreatedAt: ago(300 * time.Second),
		},
		{
			ID:    "sample-2",
			Title: "Explain quantum computing",
			Messages: []Message{
				{ID: "s2-m1", Role: RoleUser, Content: "Explain quantum computing in simple terms", Timestamp: ago(600 * time.Second)},
				{ID: "s2-m2", Role: RoleAssistant, Content: quantumReply, Timestamp: ago(598 * time.Second)},
			},
			CreatedAt: ago(600 * time.Second),
		},
		{
			ID:    "sample-3",
			Title: "Tell me a joke",
			Messages: []Message{
				{ID: "s3-m1", Role: RoleUser, Content: "Tell me a joke", Timestamp: ago(120 * time.Second)},
				{ID: "s3-m2", Role: RoleAssistant, Content: "Why do programmers prefer dark mode?\n\nBecause light attracts bugs!", Timestamp: ago(118 * time.Second)},
			},
			CreatedAt: ago(120 * time.Second),
		},
	}
}
