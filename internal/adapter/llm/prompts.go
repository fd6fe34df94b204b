package llm

import (
	"fmt"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

const rapStyleInstructions = `When generating rap verses:
- Each verse should be 4-6 lines
- Always ensure verses rhyme with a strong rhythm
- Use language, references, and slang that the character would authentically use
- Make it witty and include clever wordplay
- Include references to the opponent's background, achievements, or weaknesses
- Stay true to the rapper's character, style, and historical/cultural context
- End with a strong punchline that challenges the opponent`

const systemInstructions = `You are an AI that facilitates rap battles between famous figures from history, fiction, or current times.

` + rapStyleInstructions + `

In the rap battle:
1. Each rapper takes turns delivering a verse
2. Rappers should reference their own background, achievements, and personality
3. Rappers should directly respond to previous verses when appropriate
4. Maintain the unique voice, vocabulary, and perspective of each rapper
5. Incorporate historically accurate details when possible
6. Include clever wordplay, metaphors, and cultural references appropriate to each character

Remember that the goal is to create an entertaining and creative battle that highlights the contrast between these characters while being respectful of their legacies.`

const rapperInstructions = `You are %s. Your opponent is %s.

IMPORTANT: Respond ONLY with your rap verse. Do not include any other text, explanations, or formatting.

Current round: %d of %d`

const firstVerseInstructions = `This is the first verse of the battle. Introduce yourself with confidence and challenge your opponent.`

const responseVerseInstructions = `This is your response. Your opponent's previous verse was:

%s

Respond to their specific points and attacks while showcasing your own strengths.`

// promptMessage is one provider-neutral chat message. Each generator maps
// the role onto its own message types.
type promptMessage struct {
	role    string // "system", "assistant" or "user"
	content string
}

// buildPrompt assembles the message sequence for one turn: the battle
// system instructions, every prior verse as assistant context, then the
// turn instructions. The very first verse of a battle gets the
// introduce-yourself variant; later turns respond to the opponent's
// latest verse.
func buildPrompt(turn domain.Turn) []promptMessage {
	messages := make([]promptMessage, 0, len(turn.PriorVerses)+2)
	messages = append(messages, promptMessage{role: "system", content: systemInstructions})

	for _, verse := range turn.PriorVerses {
		messages = append(messages, promptMessage{role: "assistant", content: verse.Content})
	}

	prompt := fmt.Sprintf(rapperInstructions, turn.Rapper, turn.Opponent, turn.Round, turn.TotalRounds)
	if len(turn.PriorVerses) == 0 {
		prompt += "\n\n" + firstVerseInstructions
	} else {
		previous := turn.PriorVerses[len(turn.PriorVerses)-1]
		prompt += "\n\n" + fmt.Sprintf(responseVerseInstructions, previous.Content)
	}
	messages = append(messages, promptMessage{role: "user", content: prompt})

	return messages
}
