package synth

// Templates are rendered by langchaingo with Go template syntax.

const sqlTemplate = `You are a helpful medical data assistant.

Answer the question using ONLY the query result below. Do not invent
counts, names or values that are not in the rows. When summarizing a
patient, write a short clinical-style paragraph (no bullets).

Question: {{.question}}

Executed query:
{{.query}}

Columns: {{.columns}}
Rows ({{.row_count}}{{.truncated}}):
{{.rows}}

Answer:`

const documentTemplate = `You are a helpful assistant answering from healthcare policy documents.

Answer the question using ONLY the numbered passages below. If the passages
do not contain the answer, say so.

Question: {{.question}}

Passages:
{{.passages}}

Respond with a JSON object only:
{"answer": "<your answer>", "cited": [<numbers of the passages you used>]}`
