package classifier

const systemPrompt = "You are a careful financial assistant. You answer with a single JSON object and nothing else."

const subscriptionPromptTemplate = `Decide whether the following bank transactions are payments for one recurring subscription.

Merchant: %q
Transactions:
%s

Respond with a JSON object with exactly these fields:
- "is_subscription": boolean
- "normalized_name": string, the clean service name (for example "Netflix")
- "category": string, such as "Entertainment", "Utilities" or "Software"
- "confidence": number between 0 and 1

When the charges are not a subscription, set "is_subscription" to false.`

const researchPromptTemplate = `List current subscription prices for the category %q.

Cover:
1. The most popular paid services and their tiers.
2. Mid-priced competitors.
3. Free or open source alternatives. These matter most.

Respond with a JSON object of this shape:
{
  "benchmarks": [
    {
      "service_name": "Service",
      "tier_name": "Tier, e.g. Premium, Basic or Free",
      "monthly_price": 0.00,
      "category": %q,
      "features": {"key": "value"}
    }
  ]
}`

const bargainPromptTemplate = `Find a cheaper replacement for this subscription.

Current subscription:
%s

Cheaper options:
%s

Rules:
1. Only suggest an option that can really replace the current service: a cheaper tier of the same service, a competitor, or a free alternative.
2. Pick the SINGLE best option.
3. Compute the monthly savings against the current price.

Respond with a JSON object:
{
  "original": "current tier (inferred from name and price) - $price",
  "alternative": "suggested tier - $price",
  "monthly_savings": 0.00,
  "reason": "one short sentence",
  "type": "Downgrade" | "Competitor Switch" | "Free Alternative"
}

When no option is a sensible replacement, respond with {"monthly_savings": 0}.`
