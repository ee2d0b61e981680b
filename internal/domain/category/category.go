package category

// Category is the fixed interest / organization taxonomy.
type Category string

const (
	AnimalWelfare                Category = "animal_welfare"
	HungerAndFoodSecurity        Category = "hunger_and_food_security"
	HomelessnessAndHousing       Category = "homelessness_and_housing"
	EducationAndTutoring         Category = "education_and_tutoring"
	YouthAndChildren             Category = "youth_and_children"
	SeniorCareAndSupport         Category = "senior_care_and_support"
	HealthAndMedical             Category = "health_and_medical"
	EnvironmentalConservation    Category = "environmental_conservation"
	CommunityDevelopment         Category = "community_development"
	ArtsAndCulture               Category = "arts_and_culture"
	DisasterRelief               Category = "disaster_relief"
	VeteransAndMilitaryFamilies  Category = "veterans_and_military_families"
	ImmigrantsAndRefugees        Category = "immigrants_and_refugees"
	DisabilityServices           Category = "disability_services"
	MentalHealthAndCrisisSupport Category = "mental_health_and_crisis_support"
	AdvocacyAndHumanRights       Category = "advocacy_and_human_rights"
	FaithBasedServices           Category = "faith_based_services"
	SportsAndRecreation          Category = "sports_and_recreation"
	JobTrainingAndEmployment     Category = "job_training_and_employment"
	TechnologyAndDigitalLiteracy Category = "technology_and_digital_literacy"
)

var all = []Category{
	AnimalWelfare,
	HungerAndFoodSecurity,
	HomelessnessAndHousing,
	EducationAndTutoring,
	YouthAndChildren,
	SeniorCareAndSupport,
	HealthAndMedical,
	EnvironmentalConservation,
	CommunityDevelopment,
	ArtsAndCulture,
	DisasterRelief,
	VeteransAndMilitaryFamilies,
	ImmigrantsAndRefugees,
	DisabilityServices,
	MentalHealthAndCrisisSupport,
	AdvocacyAndHumanRights,
	FaithBasedServices,
	SportsAndRecreation,
	JobTrainingAndEmployment,
	TechnologyAndDigitalLiteracy,
}

func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

func (c Category) IsValid() bool {
	for _, v := range all {
		if v == c {
			return true
		}
	}
	return false
}

// Dedupe drops repeated entries while keeping first-seen order.
func Dedupe(in []Category) []Category {
	seen := make(map[Category]struct{}, len(in))
	out := make([]Category, 0, len(in))

	for _, c := range in {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
