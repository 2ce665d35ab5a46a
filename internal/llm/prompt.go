package llm

// providerNotes steer the model toward the table format in use.
var providerNotes = map[string]string{
	"hive":    "Use Spark SQL compatible with Hive metastore tables. Prefer INSERT OVERWRITE patterns for upserts.",
	"delta":   "Assume Delta Lake tables are available. You may use MERGE INTO if appropriate.",
	"iceberg": "Assume Apache Iceberg tables are available. You may use MERGE INTO if appropriate.",
}

const systemPrompt = "You are a precise SQL converter. Convert Oracle SQL into executable Spark SQL only. " +
	"Do not output explanations or comments. Keep CTE structure and dependency order. " +
	"No PySpark code, no markdown fences."

// buildMessages assembles the chat exchange for one statement.
func buildMessages(sql, provider string) []message {
	note, ok := providerNotes[provider]
	if !ok {
		note = "Use Spark SQL that runs in spark-sql."
	}
	user := "Constraints:\n" +
		"- Output Spark SQL only.\n" +
		"- Preserve CTEs and statement ordering.\n" +
		"- If Oracle-specific constructs exist (e.g., (+), DECODE, date formats), rewrite them.\n" +
		"- " + note + "\n\n" +
		"Oracle SQL to convert:\n" + sql
	return []message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}
}
