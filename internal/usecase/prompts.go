package usecase

import (
	"fmt"
	"strings"

	"ScriptProducer/internal/domain"
)

func topicResearchPrompt(topic string) string {
	return fmt.Sprintf("Tópico: %s", topic)
}

func topicWriterPrompt(topic, research string) string {
	return fmt.Sprintf("Tópico: %s\n\n Utilize o seguinte contexto para escrever um roteiro de vídeo:\n\n%s", topic, research)
}

func newsResearchPrompt(published []domain.Script, headlines []domain.Headline) string {
	var sb strings.Builder
	sb.WriteString("We have already published these news articles:\n")
	for _, s := range published {
		sb.WriteString("- " + s.Title + "\n")
	}

	if len(headlines) > 0 {
		sb.WriteString("\nRecent headlines from the sources we follow:\n")
		for _, h := range headlines {
			if h.Source != "" {
				sb.WriteString(fmt.Sprintf("- %s (%s)\n", h.Title, h.Source))
			} else {
				sb.WriteString("- " + h.Title + "\n")
			}
		}
	}

	sb.WriteString("\nNow, research other relevant and recent news articles (from the past 24 hours) that would be interesting for our audience.")
	return sb.String()
}
