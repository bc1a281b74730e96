package assistant

import (
	"fmt"
	"strings"
)

// Fixed user-facing messages.
const (
	// OffTopicMessage is the reply for utterances classified as not
	// career-related.
	OffTopicMessage = "I'm here to assist you with career guidance, job preparation, learning roadmaps, " +
		"and planning for your professional journey. If you have questions about how to enter " +
		"a specific field, what skills to develop, or how to grow in your role — I'd be glad to help!\n\n" +
		"However, this particular request doesn't seem related to career development, so I won't be able to assist with it. " +
		"Please feel free to ask me anything related to your career path."

	// RolesFallback substitutes an empty role-lookup result.
	RolesFallback = "Career roles could not be determined. Please specify the field of interest."

	// NoSkillsMessage is shown when resume analysis finds no skills.
	NoSkillsMessage = "No skills were identified in your resume."

	// AnswerUnavailableMessage is appended when the final composed call
	// fails, so the transcript never stalls with a dangling user turn.
	AnswerUnavailableMessage = "I wasn't able to put together an answer just now. " +
		"Please try asking your career question again in a moment."
)

func classifierPrompt(query string) string {
	return fmt.Sprintf(`You are an expert classifier. Your task is to analyze the user input below and determine whether it is asking for career guidance, planning, job preparation, learning roadmap, or role-specific advice.

A valid input may include things like:
- Planning a career in a specific field (e.g., "I want to become a data analyst. Help me plan.")
- Creating a roadmap or study plan to become something (e.g., "How to become a machine learning engineer?")
- Job search or resume advice
- Skills, courses, or certifications for a role
- Interview preparation, industry expectations, or portfolio suggestions

An invalid input is anything unrelated to careers, such as:
- Creative writing, storytelling, history, politics, general facts, entertainment, or casual conversation.

Now, evaluate the input below:

"%s"

Is this clearly a career-related request? Answer only with 'Yes' or 'No'.`, query)
}

func fieldPrompt(query string) string {
	return fmt.Sprintf("Based on the user's query, determine the field they are referring to. "+
		"User query: %q. Provide only the career and job field, like 'Machine Learning', "+
		"'Data Science', 'Web Development', 'AI', 'Cloud Computing', etc.", query)
}

func rolesPrompt(field string) string {
	return fmt.Sprintf("Given the field of %s, suggest a list of relevant job roles in this domain.", field)
}

func roadmapPrompt(field string) string {
	return fmt.Sprintf("Generate a career roadmap for someone wanting to become a %s. "+
		"List 10 to 15 steps in chronological order. Keep the list clear and concise. "+
		"Simply generate the list, nothing else - no starting text or highlighting text.", field)
}

func skillsPrompt(resumeText string) string {
	return fmt.Sprintf(`You are a career assistant. From the following resume content, extract all the relevant professional skills.
Include programming languages, tools, technologies, frameworks, cloud services, and soft skills.
Return the result as a clean comma-separated list with no extra commentary.

Resume:
"""
%s
"""`, resumeText)
}

func careerPathsPrompt(skills []string) string {
	return fmt.Sprintf("Act like you are reading skills from a resume of a person. "+
		"Given the skills: %s, suggest some relevant career paths. "+
		"And also suggest high paying job roles in each pathway.", strings.Join(skills, ", "))
}

// compositePrompt assembles the final instruction sent to the stateful chat
// handle: the original utterance, the discovered job roles, and a request
// for platform-specific course suggestions.
func compositePrompt(utterance, field, roles string) string {
	return fmt.Sprintf("%s\n\n"+
		"**And Relevant Job Roles in %s:**\n%s\n\n"+
		"**And suggest some online courses on various platforms such as Udemy and Coursera "+
		"on the topic of %s, with example course names.**",
		utterance, field, roles, field)
}
