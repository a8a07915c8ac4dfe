package processor

import (
	"fmt"
	"strings"
)

// 各区块的采样温度。摘要和教育允许发挥，事实性区块保持确定性。
const (
	TemperatureSummary         = float32(0.7)
	TemperatureSkills          = float32(0.0)
	TemperatureProjects        = float32(0.0)
	TemperatureEducation       = float32(1.0)
	TemperatureLanguages       = float32(0.0)
	TemperatureDefault         = float32(0.5)
	TemperatureMerge           = float32(0.0)
	TemperatureRecommendations = float32(0.1)
	TemperatureParsing         = float32(0.0)
	TemperatureTextParsing     = float32(0.5)
)

// temperatureForBlock 返回区块对应的采样温度
func temperatureForBlock(block string) float32 {
	switch block {
	case "summary":
		return TemperatureSummary
	case "skills":
		return TemperatureSkills
	case "projects":
		return TemperatureProjects
	case "education":
		return TemperatureEducation
	case "languages":
		return TemperatureLanguages
	}
	return TemperatureDefault
}

// 所有提示词统一追加的收尾指令
const commonInstructions = `

## IMPORTANT
- Always return valid JSON
- Do not add extra text before or after JSON
- Be accurate and consistent
- Follow all specified rules without exceptions
`

// htmlParsingPrompt HTML分块 → 五个标准区块
func htmlParsingPrompt(htmlContent string) string {
	return fmt.Sprintf(`You are an expert HR analyst. Analyze this HTML resume chunk and extract relevant information.

HTML CHUNK:
%s

## TASK
Extract information for these blocks:
- "projects" - ONLY actual work experience with company names, job titles, dates, and achievements (as array of individual project descriptions)
- "skills" - technical skills, technologies, competencies, and expertise areas
- "education" - education, degrees, certifications, and academic background
- "languages" - language proficiency levels
- "summary" - general information, overview, professional summary, and contact information (name, location, phone, email)

## IMPORTANT RULES
- For "projects": ONLY include actual work experience with company names, job titles, and dates. Each project should be a complete description including company, role, and key achievements.
- For "skills": include technical skills, technologies, methodologies, and competencies
- For "education": look for sections titled "EDUCATION", "EDUCATION & PROFESSIONAL DEVELOPMENT", "ACADEMIC BACKGROUND", universities, degrees, certifications, training programs
- For "languages": look for sections titled "LANGUAGES", "LANGUAGE SKILLS", language proficiency levels (native, fluent, intermediate, basic)
- For other blocks: return as single text string
- Only include information that is clearly present in this chunk
- If a block has no relevant information, return empty string or empty array
- DO NOT mix skills/competencies with actual work projects

## JSON FORMATTING RULES
- Escape all quotes in text: " becomes \"
- Escape all backslashes: \ becomes \\
- Escape all newlines
- Ensure all strings are properly quoted
- Do not include unescaped special characters

## OUTPUT
Return ONLY valid JSON with these 5 blocks:

`+"```json"+`
{
  "projects": ["project1 description", "project2 description"],
  "skills": "skills text...",
  "education": "education text...",
  "languages": "languages text...",
  "summary": "summary text..."
}
`+"```"+commonInstructions, htmlContent)
}

// textParsingPrompt 纯文本页 → 五个标准区块
func textParsingPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert HR analyst. Analyze this resume and divide it into blocks.

RESUME:
%s

## TASK
Extract these blocks:
- "projects" - work experience and projects
- "skills" - technical skills and competencies
- "education" - education and certifications
- "languages" - language proficiency
- "summary" - general information and overview

## OUTPUT
Return ONLY valid JSON with these 5 blocks. Each block contains relevant text only.

`+"```json"+`
{
  "projects": "work experience text...",
  "skills": "skills text...",
  "education": "education text...",
  "languages": "languages text...",
  "summary": "summary text..."
}
`+"```"+commonInstructions, resumeText)
}

// summaryBlockPrompt 摘要区块抽取
func summaryBlockPrompt(content string) string {
	return fmt.Sprintf(`Analyze the following resume block (summary/about me) and extract information in JSON format:

%s

Return JSON with fields:
- skills: list of skills with base score 10
- location: candidate location (city, country, or region) - extract from contact info, address, or location mentions
- experience: total work experience
- ready_to_remote: willingness to work remotely (boolean)
- ready_to_trip: willingness to travel for business (boolean)

IMPORTANT: Look for location information in:
- Contact information (e.g., "Armenia | Tel: +374...")
- Address fields
- Location mentions in text
- Geographic references

Example response:
{
    "skills": [{"name": "Project Management", "score": 10}, {"name": "Team Leadership", "score": 10}],
    "location": "USA, New York",
    "experience": "5 years",
    "ready_to_remote": true,
    "ready_to_trip": false
}`+commonInstructions, content)
}

// skillsBlockPrompt 技能区块抽取
func skillsBlockPrompt(content string) string {
	return fmt.Sprintf(`Analyze the skills block and extract direct skills with intelligent scoring:

%s

Return JSON with fields:
- skills: list of skills with intelligent scores (10-100)

Scoring Rules:

Base Scoring:
- Individual skills: Base score 10

Interrelated Skills Bonus:
- If skills are related/connected, increase their scores
- Related skills get +10 to +30 bonus points
- Maximum score for any skill: 100

Examples of Related Skills:
- Project Management + Team Leadership + Strategic Planning = Higher scores for management expertise
- Marketing + Digital Marketing + Social Media = Higher scores for marketing expertise
- Sales + Customer Relationship + Negotiation = Higher scores for sales expertise
- Finance + Accounting + Risk Management = Higher scores for financial expertise

Scoring Logic:
1. Identify individual skills (base score 10)
2. Find related/connected skills
3. Increase scores for related skills by 10-30 points
4. Ensure maximum score doesn't exceed 100

Example response:
{
    "skills": [
        {"name": "Project Management", "score": 25},
        {"name": "Team Leadership", "score": 30},
        {"name": "Strategic Planning", "score": 28}
    ]
}

Important:
- Base score for individual skills: 10
- Related skills get bonus points: +10 to +30
- Maximum score: 100
- Focus on identifying skill relationships
- Return valid JSON only`+commonInstructions, content)
}

// singleProjectPrompt 单个项目片段抽取
func singleProjectPrompt(content string) string {
	return fmt.Sprintf(`You are an expert HR professional and job title cataloger with deep knowledge of ALL industries and professions. Your task is to analyze the following individual project/work experience and return ONLY valid JSON strictly in the format specified. Do not include any markdown, explanations, or extra text.

Project/Work Experience:
%s

Return JSON with fields:
- skills: list of skills used in this specific project with scores (0-100)
- roles: list of roles in this specific project with details

CRITICAL DURATION CALCULATION:
- Calculate EXACT duration from start and end dates
- Use precise format: "X years, Y months" or "X.Y years"
- Example: "Oct 2023 – Jul 2025" = "1 year, 9 months" (not "2 years")
- Example: "Oct 2021 – Sep 2023" = "2 years" (exact)

CRITICAL ROLE STANDARDS (STRICT - NO EXCEPTIONS):
- ALWAYS use FULL, DESCRIPTIVE job titles (NOT abbreviations)
- NEVER create new variations of existing titles
- Be CONSISTENT - same role should always get the same title
- Use industry-standard terminology when possible
- Prefer FULL names over abbreviations (e.g., "Project Manager" over "PM")
- Be UNIVERSAL - work for ALL industries (IT, Marketing, Sales, Finance, Healthcare, etc.)

CRITICAL PROJECT NAMING STANDARDS:
- Use ONLY the company name and location (e.g., "Company Name (Country)")
- NEVER add descriptive details like "Project", "System", "Platform"
- NEVER add technical descriptions or project specifics
- Be CONSISTENT - same company should always get the same name

CRITICAL DURATION STANDARDS:
- Calculate EXACT duration from dates
- Use PRECISE format: "X years, Y months" or "X years" (exact)
- NEVER approximate or round up/down
- Be CONSISTENT - same dates should always give same duration

ROLE ORDERING RULES:
- Sort roles by score in DESCENDING order (highest first)
- If same score, sort by duration (longest first)
- If same duration, sort by recency (most recent first)
- Be CONSISTENT - same data should always give same order

Scoring Rules:

For Roles:
1. The closer the work time is to the current time, the HIGHER the role score
2. The longer the work duration, the HIGHER the role score

For Skills:
3. The closer the work time is to the current time, the HIGHER the skill score
4. The longer the work duration, the HIGHER the skill score
5. If skills are interrelated/connected, the HIGHER the skill score

CRITICAL TIME-BASED SCORING:
- Skills from (ThisYear-5)-ThisYear: Score 70-100 (modern, relevant)
- Skills from (ThisYear-10)-(ThisYear-6): Score 50-80 (somewhat relevant)
- Skills from (ThisYear-15)-(ThisYear-11): Score 30-60 (outdated but usable)
- Skills from (ThisYear-20)-(ThisYear-16): Score 15-40 (very outdated)
- Skills from (ThisYear-30)-(ThisYear-21): Score 5-25 (legacy, minimal relevance)

Example response:
{
    "skills": [
        {"name": "Project Management", "score": 85},
        {"name": "Team Leadership", "score": 80}
    ],
    "roles": [
        {"title": "Senior Software Developer", "project": "Project Name", "duration": "1 year, 9 months", "score": 85, "category": ["Development", "Software Engineering"]}
    ]
}

Important:
- Focus ONLY on skills and roles from THIS specific project
- Apply STRICT time-based scoring rules
- Score skills based on their importance in this project (0-100)
- Extract role information specific to this project
- Calculate EXACT duration from dates, not approximate
- Return valid JSON only
- NO CREATIVITY in role titles - use standard names only
- Follow CRITICAL PROJECT NAMING STANDARDS strictly
- Follow CRITICAL DURATION STANDARDS strictly`+commonInstructions, content)
}

// educationBlockPrompt 教育区块抽取
func educationBlockPrompt(content string) string {
	return fmt.Sprintf(`Analyze the education block:

%s

Return JSON with fields:
- skills: skills from education (if any)

Example response:
{
    "skills": [{"name": "Business Administration", "score": 5}]
}`+commonInstructions, content)
}

// languagesBlockPrompt 语言区块抽取
func languagesBlockPrompt(content string) string {
	return fmt.Sprintf(`You are an expert HR professional and language skills analyzer. Your task is to analyze the following languages block and return ONLY valid JSON strictly in the format specified. Do not include any markdown, explanations, or extra text.

Languages Block:
%s

CRITICAL PARSING RULES (STRICT - NO EXCEPTIONS):
- Return ONLY valid JSON with languages array
- Each language must have "language" and "level" fields
- Use standard language levels: "native", "fluent", "advanced", "intermediate", "basic"
- If no languages found, return empty array: "languages": []
- NO extra text, NO explanations, NO markdown
- Be CONSISTENT in language identification

Return JSON with fields:
- languages: list of languages with levels

Example response:
{
    "languages": [
        {"language": "English", "level": "native"},
        {"language": "Spanish", "level": "fluent"}
    ]
}

Important:
- Return valid JSON only
- Be CONSISTENT in language identification
- NO CREATIVITY - follow rules strictly`+commonInstructions, content)
}

// genericBlockPrompt 未知区块的兜底提示词
func genericBlockPrompt(content string) string {
	return fmt.Sprintf(`Analyze the following resume block:

%s

Extract any useful information about skills, roles, location, etc.

Return JSON with fields:
- skills: list of skills
- roles: list of roles
- location: location
- languages: languages

Example response:
{
    "skills": [],
    "roles": [],
    "location": "",
    "languages": []
}`+commonInstructions, content)
}

// blockPrompt 按区块名选择提示词
func blockPrompt(block, content string) string {
	switch block {
	case "summary":
		return summaryBlockPrompt(content)
	case "skills":
		return skillsBlockPrompt(content)
	case "education":
		return educationBlockPrompt(content)
	case "languages":
		return languagesBlockPrompt(content)
	}
	return genericBlockPrompt(content)
}

// skillsMergePrompt 技能合并。skillLines形如 "- Java (score: 85)"
func skillsMergePrompt(skillLines []string) string {
	return fmt.Sprintf(`You are a skills analyzer. Your task is to MERGE similar skills into single entries.

INPUT SKILLS:
%s

## MERGING RULES:
1. **MERGE similar skills**: "Java" + "Java Development" → "Java Development"
2. **DO NOT MERGE different programming languages**: "Java" ≠ "Python" ≠ "JavaScript" ≠ "PHP" ≠ "Delphi"
3. **DO NOT MERGE different technologies**: "AWS" ≠ "Azure", "Spring" ≠ "Django"
4. **DO NOT MERGE different frameworks**: "Spring Boot" ≠ "Quarkus", "React" ≠ "Vue"
5. **Choose the BEST name**: Prefer full names over abbreviations
6. **Score calculation**: Take highest score + 1%% bonus per merged skill

## PROGRAMMING LANGUAGES - CRITICAL RULE:
- Java, Python, JavaScript, PHP, Delphi, C++, C#, Go, Rust, Swift, Kotlin, Scala, Ruby, Perl, R, MATLAB
- Each programming language is a SEPARATE skill - NEVER combine them
- Only merge variations of the SAME language: "Java" + "Java Development" = "Java Development"
- If you see "Java" and "Python" in the list, they must remain as TWO separate skills
- If you see "JavaScript" and "PHP" in the list, they must remain as TWO separate skills

## OUTPUT FORMAT:
Return ONLY valid JSON array. Each skill must have:
- "name": Best name from merged skills
- "merged_names": All names joined with "&"
- "merge_reason": Why skills were merged
- "score": Calculated score (highest + bonus)

## EXAMPLES:
Input: "- Java (score: 85)" + "- Java Development (score: 90)"
Output: {"name": "Java Development", "merged_names": "Java & Java Development", "merge_reason": "Same language, different specificity", "score": 92}

Input: "- Java (score: 85)" + "- Python (score: 90)" + "- JavaScript (score: 80)"
Output: THREE separate skills - DO NOT MERGE:
[
  {"name": "Java", "merged_names": "Java", "merge_reason": "No merge needed", "score": 85},
  {"name": "Python", "merged_names": "Python", "merge_reason": "No merge needed", "score": 90},
  {"name": "JavaScript", "merged_names": "JavaScript", "merge_reason": "No merge needed", "score": 80}
]

## IMPORTANT FORMATTING RULES:
- In merged_names, use ONLY the skill names, NOT the scores

## CRITICAL:
- Return ONLY valid JSON array
- Each skill must have all 4 fields
- NEVER merge different programming languages
- Be consistent in merging decisions
- Work for ANY industry`+commonInstructions, strings.Join(skillLines, "\n"))
}

// jobRecommendationsPrompt 基于最终档案生成岗位推荐
func jobRecommendationsPrompt(profileJSON string) string {
	return fmt.Sprintf(`You are an expert HR consultant and career advisor. Analyze the following resume analysis and provide job recommendations.

RESUME ANALYSIS DATA:
%s

TASK: Based on the skills, experience, and roles in this resume, recommend the TOP 5-8 job positions where this candidate would be most productive and successful.

REQUIREMENTS:
1. Focus on positions that match the candidate's strongest skills and experience
2. Consider the candidate's experience level (entry, mid, senior)
3. Recommend positions from various industries where their skills transfer well
4. Each recommendation should include a confidence score (0-100)

OUTPUT FORMAT - Return ONLY valid JSON:
{
  "recommendations": [
    {
      "title": "Job Title",
      "score": 85,
      "category": ["Primary Category", "Secondary Category"],
      "reason": "Brief explanation why this position fits"
    }
  ]
}

CRITICAL: You MUST return ONLY the JSON object above. No additional text, no explanations, no markdown formatting. Just the raw JSON.

RULES:
- Return ONLY the JSON, no additional text
- Use realistic job titles from the current market
- Score should reflect how well the candidate fits (0-100)
- Categories should be relevant to the position
- Reason should be 1-2 sentences explaining the fit
- Focus on positions where the candidate can excel based on their profile

REMEMBER: Return ONLY the JSON object. No other text, no explanations, no formatting.`, profileJSON)
}
