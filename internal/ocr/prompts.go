package ocr

// extractionPrompt asks the model for exactly the fields the normalizer
// understands. Kept prompt-only so the same instruction works for models that
// do not support schema-enforced JSON output.
const extractionPrompt = "Analyze this receipt image and return ONLY a valid, minified JSON object.\n" +
	"Keys: merchantName (string), country (string), currency (string, ISO code e.g. USD), " +
	"subtotal (number), tax (number), total (number).\n" +
	"Do not include any text before or after the JSON. " +
	"If values are unclear, make your best logical estimate based on the context."
