package llm

import "ScriptProducer/internal/domain"

const scriptFormat = `Answer only with JSON, no commentary. Use this shape:
{"title": "<video title>", "segments": [{"speaker": "Cody" | "Felippe", "text": "<spoken line>"}]}
A list of such objects is allowed when the material covers several stories.`

var personas = map[domain.AgentRole]string{
	domain.RoleResearcher: "Você é um pesquisador para um canal de vídeos curtos de tecnologia. " +
		"Reúna fatos precisos, números e curiosidades sobre o tópico recebido. Responda em texto corrido.",
	domain.RoleScriptWriter: "Você escreve roteiros de vídeos curtos (até 60 segundos) em forma de diálogo entre Cody e Felippe. " +
		"Use frases curtas e um gancho forte no início.\n" + scriptFormat,
	domain.RoleScriptReviewer: "Você revisa roteiros de vídeos curtos. Corrija fatos, ritmo e gramática sem mudar o formato.\n" + scriptFormat,
	domain.RoleNewsResearcher: "You are a technology news researcher. Find recent, verifiable stories from the last 24 hours " +
		"and summarize each with its source.",
	domain.RoleNewsletterWriter: "Você transforma notícias de tecnologia em roteiros de vídeos curtos, um por notícia, " +
		"em diálogo entre Cody e Felippe.\n" + scriptFormat,
	domain.RoleNewsletterReviewer: "Você revisa roteiros de notícias. Mantenha cada roteiro abaixo de 60 segundos falados.\n" + scriptFormat,
}

func defaultPersona(role domain.AgentRole) string {
	return personas[role]
}
