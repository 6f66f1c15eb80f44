package checkup

import (
	"fmt"
	"time"
)

// BuildCheckupPrompt assembles the single structured prompt for the vision
// call. The model is told today's date, the pre-computed next checkup date,
// and the exact JSON shape required; hasPrevious adds the growth-comparison
// block and tells the model the second attached image is the older photo.
func BuildCheckupPrompt(today, next time.Time, hasPrevious bool) string {
	growthField := ""
	growthNote := ""
	if hasPrevious {
		growthField = `,
  "growthAnalysis": {"rate": "slow|moderate|fast", "changes": ["observed change"]}`
		growthNote = "\nThe second attached image is an earlier photo of the same plant. Compare the two and fill in growthAnalysis."
	}

	return fmt.Sprintf(`You are a plant-care expert. Analyze the attached photo of a plant and produce a checkup report.

Today's date is %s. The next checkup is scheduled for %s.%s

Respond with ONLY a JSON object in exactly this shape, no other text:
{
  "stage": "seedling|juvenile|mature|flowering|dormant",
  "healthAssessment": "one-paragraph overall assessment",
  "concerns": [{"issue": "description", "severity": "low|medium|high"}],
  "carePlan": {
    "watering": "watering instructions",
    "light": "light instructions",
    "fertilization": "fertilization instructions",
    "maintenance": "pruning/repotting/cleaning instructions"
  },
  "todoItems": ["concrete task for the owner"],
  "nextCheckupDate": "%s"%s
}`,
		today.Format(dateLayout), next.Format(dateLayout), growthNote,
		next.Format(dateLayout), growthField)
}
