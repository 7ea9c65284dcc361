package sheet

// field identifies one canonical candidate attribute a header column can
// feed. Multiple header spellings may target the same field; schema drift in
// the form is absorbed here instead of in the mapper logic.
type field int

const (
	fieldTimestamp field = iota
	fieldEmail
	fieldFullName
	fieldPhone
	fieldLinkedIn
	fieldGitHub
	fieldPortfolio
	fieldRatingTypeScript
	fieldRatingNode
	fieldRatingReact
	fieldRatingSQL
	fieldRatingETL
	fieldScenarioIngestion
	fieldCloudProviders
	fieldScenarioIsolation
	fieldScenarioState
	fieldCompensation
	fieldAvailability
	fieldResumeURL
	fieldAIRating
	fieldAISummary
	fieldAIStrengths
	fieldAIWeaknesses
	fieldAIQuestions
	fieldComments
	fieldCallLog
	fieldCurrentComp
)

type headerMapping struct {
	header string
	field  field
}

// headerMappings pins the exact header strings the form export produces.
// Order matters: the last mapping that finds a column wins for its field,
// which lets typo variants appear after the canonical spelling.
var headerMappings = []headerMapping{
	{"Timestamp", fieldTimestamp},
	{"Email Address", fieldEmail},
	{"Full Name", fieldFullName},
	{"WhatsApp Number", fieldPhone},
	{"LinkedIn Profile URL", fieldLinkedIn},
	{"GitHub / Portfolio URL", fieldGitHub},
	{"Please provide links to 2-3 of your most complex full-stack projects or relevant portfolio items", fieldPortfolio},
	{"How would you rate your expertise level with the core technologies required for this role? [TypeScript]", fieldRatingTypeScript},
	{"How would you rate your expertise level with the core technologies required for this role? [Node.js]", fieldRatingNode},
	{"How would you rate your expertise level with the core technologies required for this role? [React (Frontend)]", fieldRatingReact},
	{"How would you rate your expertise level with the core technologies required for this role? [PostgreSQL (Database Design/Queries)]", fieldRatingSQL},
	// Typo variant seen in older exports of the same form.
	{"How would you rate your expertise level with the core technologies required for this role? [PostgresSQL]", fieldRatingSQL},
	{"How would you rate your expertise level with the core technologies required for this role? [ETL/Data Pipelines]", fieldRatingETL},
	{"Data Ingestion Scenario: This dashboard relies on the Cajari API, which runs daily reports (snapshots) rather than real-time streams. We need to ingest 17 different report types (JSON & CSV) every morning. Briefly describe how you would design a robust Cron/Scheduler system to handle this ingestion, ensuring we track history when data changes between days.", fieldScenarioIngestion},
	{"Which cloud provider(s) (e.g., AWS, GCP, Azure, DigitalOcean) have you used for deploying and managing complex applications?", fieldCloudProviders},
	{"We require strict data isolation for multiple clients (Agencies & Sellers) within the same database. Would you implement Row Level Security (RLS) or logical isolation in the query layer? Why?", fieldScenarioIsolation},
	{"We have complex tables that require sorting, filtering, and nested row expansion (e.g., viewing appeal history inside a violation row). Which React library or approach would you use to handle this state management efficiently?", fieldScenarioState},
	{"What is your desired monthly compensation (USD, independent contractor rate)?", fieldCompensation},
	{"Availability", fieldAvailability},
	{"Upload Resume/CV", fieldResumeURL},
	// Sheet-side AI columns (written back by the enrichment webhook). Note the
	// trailing space in "AI Rating " — it is literal in the sheet.
	{"AI Rating ", fieldAIRating},
	{"AI Summary", fieldAISummary},
	{"AI Strengths", fieldAIStrengths},
	{"AI Weaknesses", fieldAIWeaknesses},
	{"AI Questions", fieldAIQuestions},
	{"Sandeep Comments", fieldComments},
	{"Call Details", fieldCallLog},
	{"Current CTC/Month", fieldCurrentComp},
}
