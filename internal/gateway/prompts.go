package gateway

import "fmt"

// SystemInstruction is the fixed persona for the travel assistant.
const SystemInstruction = `You are GloboTrack AI, a specialized travel assistant. Help users with itinerary planning, packing tips, visa info, and local recommendations. Always provide prices in Indian Rupees (INR) when asked about costs. Be concise, friendly, and helpful.`

// routeSchema constrains search output to an array of TravelRoute objects.
const routeSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id": {"type": "string"},
      "name": {"type": "string"},
      "totalCost": {"type": "number", "description": "Total cost in INR"},
      "totalDuration": {"type": "string"},
      "transfers": {"type": "number"},
      "legs": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {
            "id": {"type": "string"},
            "from": {"type": "string"},
            "to": {"type": "string"},
            "type": {"type": "string", "description": "flight, train, bus or ferry"},
            "duration": {"type": "string"},
            "cost": {"type": "number", "description": "Cost in INR"},
            "carrier": {"type": "string"}
          },
          "required": ["from", "to", "type", "duration", "cost"]
        }
      },
      "bookingOptions": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {
            "platform": {"type": "string"},
            "price": {"type": "number", "description": "Price on this platform in INR"},
            "url": {"type": "string"}
          },
          "required": ["platform", "price", "url"]
        }
      }
    },
    "required": ["name", "totalCost", "totalDuration", "transfers", "legs", "bookingOptions"]
  }
}`

func searchPrompt(origin, destination string) string {
	return fmt.Sprintf(`Generate %d diverse travel routes from %s to %s.
Include direct options if they exist, or indirect options involving flights, trains, or buses.
Return the response in JSON format.
IMPORTANT: Provide all costs and prices in Indian Rupees (INR). Ensure the amounts are accurate estimates for the current market.
For each route, suggest specific booking platforms like Skyscanner, Omio, Google Flights, MakeMyTrip, or IRCTC where applicable.
Include an estimated price for that specific platform and a direct URL to the booking site.

Respond with JSON only, matching this schema:
%s`, MaxRoutes, origin, destination, routeSchema)
}
