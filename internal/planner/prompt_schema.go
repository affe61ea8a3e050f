package planner

/* =================================================================================
						PROMPT TEMPLATES
	Every prompt is BasePromptTemplate + DietaryRequirementsTemplate followed by
	either the per-day meal structure or the closing guidance request.
=================================================================================*/

/*
BasePromptTemplate frames the nutritionist persona.
Placeholders: cuisine (title), diet, goal, cuisine (title), diet.
*/
const BasePromptTemplate = `You are a Certified Nutritionist & Chef specializing in %s cuisine
with expertise in %s diets. Design a detailed and practical meal plan optimized
for %s, featuring authentic %s recipes adapted for %s requirements.

The meal plan should be realistic and implementable with readily available ingredients while maintaining
cultural authenticity. Balance nutrition with practicality and taste.
`

/*
DietaryRequirementsTemplate restates the request and embeds the cuisine guidance.
Placeholders: goal, diet, cuisine (all title-cased), calorie phrase, allergies, guideline text.
*/
const DietaryRequirementsTemplate = `
### Dietary Specifications
- **Primary Goal**: %s
- **Diet Type**: %s
- **Cuisine Style**: %s
- **Daily Calories**: Ensure total daily calories are %s
- **Allergies/Restrictions**: %s

### Cuisine-Specific Guidelines
%s
`

// DayMealStructureTemplate asks for the five meals of one day. Placeholder: day number.
const DayMealStructureTemplate = `
### Detailed Meal Plan for Day %d

Provide the following meals with complete details:

1. **Breakfast** (Morning Energy Boost)
   - Main dish with protein source
   - Side items and beverages
   - Timing: Early morning meal

2. **Mid-Morning Snack**
   - Light, nutritious options
   - Protein or fruit-based choices

3. **Lunch** (Mid-day Fuel)
   - Complete main course
   - Side dishes and accompaniments
   - Recommended beverages

4. **Evening Snack**
   - Energy-sustaining options
   - Small but satisfying portions

5. **Dinner** (Evening Nourishment)
   - Full main course
   - Balanced side dishes
   - Light beverage options

For each meal, include:
1. 🍽️ **Recipe Name & Description**
2. ⚖️ **Exact Portions & Measurements**
3. 📊 **Complete Nutritional Breakdown**
   - Calories: exact kcal
   - Protein: g
   - Carbs: g
   - Fats: g
   - Fiber: g
4. 🥘 **Ingredients List**
5. 👩‍🍳 **Preparation Steps** (step-by-step with precise cooking times and techniques)
6. ⌚ **Timing Guidelines**
7. 💡 **Tips & Substitutions**
`

// GuidanceSectionsTemplate asks for the plan-wide practical sections. Placeholder: day count.
const GuidanceSectionsTemplate = `
Provide the following practical guidance sections for the entire %d-day meal plan:

1. **Weekly Shopping List**
   - Organize by food category (produce, proteins, pantry items, etc.)
   - Include exact quantities needed for the full plan
   - Note shelf-stable vs fresh items
   - Suggest budget-friendly alternatives

2. **Meal Prep Strategy**
   - Provide a detailed weekly meal prep timeline
   - Identify which components can be prepared in advance
   - Include storage instructions and shelf life information
   - Batch cooking recommendations

3. **Portion Control & Scaling**
   - Guidelines for adjusting portions based on individual needs
   - How to scale recipes up or down
   - Visual portion size references

4. **Progress Tracking & Adjustments**
   - Signs that the meal plan is working for the stated goal
   - Common issues and how to troubleshoot them
   - When and how to make adjustments
`
