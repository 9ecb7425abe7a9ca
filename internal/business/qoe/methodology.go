package qoe

// Methodology documents how the dashboard consolidates actions.
type Methodology struct {
	Title string   `json:"title"`
	Rules []string `json:"rules"`
}

// DefaultMethodology is served by the methodology page.
var DefaultMethodology = Methodology{
	Title: "Metodologia de Cálculo",
	Rules: []string{
		"Cada linha da planilha representa uma ação técnica.",
		"Um Node pode possuir múltiplas ações no período.",
		"O QOE Antes de um Node é calculado pela média de suas ações.",
		"O QOE Depois de um Node considera o melhor valor obtido.",
		"A melhoria é avaliada comparando QOE Depois e QOE Antes.",
		"Linhas sem QOE Antes e sem QOE Depois são desconsideradas.",
		"Nodes com QOE Antes ou QOE Depois ausente são contados como sem comparação.",
		"No Dashboard Geral, os Nodes são consolidados globalmente.",
		"Nas visões por setor, os Nodes são consolidados apenas dentro do setor selecionado.",
		"O sistema sempre utiliza a última planilha carregada como base de dados ativa.",
	},
}
