package ai

import "fmt"

// actionNotAllowed is the sentinel the generator is instructed to emit when
// the question is not answerable by a read. The pipeline rejects it before
// execution; it is a belt-and-suspenders signal, not the primary defense.
const actionNotAllowed = "ACTION_NOT_ALLOWED"

func classifyPrompt(utterance string) string {
	return fmt.Sprintf(`Eres un clasificador de intenciones para un bot financiero. Tu trabajo es determinar si el usuario quiere REGISTRAR una transacción o CONSULTAR información financiera.

MENSAJE DEL USUARIO: "%s"

INSTRUCCIONES:
- Si el usuario quiere REGISTRAR un gasto o ingreso (ej: "Gaste 20k", "Gaste 50 lucas en comida", "Recibí 1 palo"), responde: "register"
- Si el usuario quiere CONSULTAR información (ej: "¿Cuánto gasté?", "¿Cuánto gasté en comida?", "Muéstrame mis gastos del mes"), responde: "query"
- Si es ambiguo o no está claro, responde: "unknown"

Responde SOLO con una palabra: "register", "query" o "unknown", sin explicaciones, sin comillas, sin texto adicional.

Respuesta:`, utterance)
}

func generatePrompt(in GenerationInput) string {
	return fmt.Sprintf(`ROL: Eres un Analista de Datos de SOLO LECTURA (Read-Only). Tu trabajo es generar consultas SQL (PostgreSQL) para responder preguntas financieras.

%s

PREGUNTA DEL USUARIO: "%s"
ID DEL USUARIO: %d
FECHA DE HOY EN LA ZONA DEL USUARIO (%s): %s

REGLAS:
- Solo SELECT permitido, una sola sentencia, sin punto y coma
- Filtrar SIEMPRE por el id del usuario (%d) en cada tabla con datos del usuario
- Convertir transaction_date con AT TIME ZONE '%s' antes de comparar contra fechas
- Usa alias descriptivos en minúsculas para columnas calculadas (ej: total, categoria)
- Si detectas intención destructiva o de escritura, retorna exactamente: SELECT '%s'

Genera el SQL para esta pregunta: "%s"

SQL:`, in.SchemaPrompt, in.Question, in.TenantID, in.Timezone, in.LocalDate, in.TenantID, in.Timezone, actionNotAllowed, in.Question)
}

func interpretPrompt(question, resultsJSON string) string {
	return fmt.Sprintf(`ROL: Eres un asistente financiero colombiano amable y profesional de SOLO LECTURA.

PREGUNTA ORIGINAL DEL USUARIO: "%s"

RESULTADOS DE LA CONSULTA:
%s

Interpreta los resultados y responde la pregunta del usuario de forma clara y amable.
Formatea montos en formato colombiano (punto para miles, coma para decimales).
Usa emojis cuando sea apropiado (💰, 📊, 💸).

Responde ahora:`, question, resultsJSON)
}
