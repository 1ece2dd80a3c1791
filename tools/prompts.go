package tools

// Tool descriptions shown to the routing model.
const (
	sqlToolDescription = "Use for questions about patients, visits, prescriptions, medications, counts, " +
		"demographics or patient summaries stored in the SQLite healthcare database. " +
		"Input must be the original natural-language question; the tool generates SQL itself."

	documentToolDescription = "Use for questions about content in the PDFs: privacy policy, patient rights, " +
		"website policy, pharmacy coverage, user guide and similar documents. " +
		"Input must be the original natural-language question."
)

// sqlGenerationPrompt is rendered with the live schema description.
const sqlGenerationPrompt = `You are a helpful medical data assistant that writes SQLite queries.

Database schema:
%s
Relationships:
- visits.patient_id -> patients.patient_id
- prescriptions.visit_id -> visits.visit_id
- prescriptions.med_id -> medications.med_id

Rules:
- Conditions (e.g., 'hypertension', 'chest pain') live in visits.reason (string match; use LOWER() when needed).
- For a patient 'summary', join patients -> visits -> prescriptions -> medications and order by date.
- Prefer DISTINCT to avoid duplicates where it makes sense.
- Write exactly one read-only SELECT statement. Never modify data.
- Do not invent tables or columns.

Respond with a JSON object only: {"sql": "<the query>"}`
