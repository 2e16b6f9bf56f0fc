package session

// defaultCategories is the built-in churn reason allow-list. Order is
// meaningful: a category's position is its outreach priority, first highest.
var defaultCategories = []string{
	"PREÇO CARO CUSTO BENEFÍCIO",
	"SEM CONDIÇÕES FINANCEIRAS",
	"DESEJA DESCONTO",
	"QUEBRA CONSTANTE",
	"PROBLEMA NÃO RESOLVIDO",
	"NÃO QUER INFORMAR O MOTIVO",
	"INSATISFAÇÃO SERVIÇO CAMPO",
	"QUEBRA CONSTANTE/FERRUGEM/ BARULHO",
	"INSATISFAÇÃO COM O TÉCNICO",
	"DISPONIBILIDADE DE AGENDA - DATA DISTANTE",
	"AGENDA NÃO CUMPRIDA",
	"ATRASO DE MANUTENÇÃO PREVENTIVA",
	"POSTURA DO ATENDENTE",
	"JÁ COMPROU OU GANHOU OUTRO PURIFICADOR",
	"DEMORA PARA SER ATENDIDO",
	"PURIFICADOR SEM UTILIZAÇÃO",
	"TAMANHO/DESIGN/COR",
	"FECHAMENTO EMPRESA / FILIAL OU DEPARTAMENTO",
	"FALTA DE PRODUTO",
}

// DefaultCategories returns a copy of the built-in churn reason allow-list
// in priority order.
func DefaultCategories() []string {
	out := make([]string, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}
