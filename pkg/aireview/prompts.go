package aireview

import (
	"fmt"
	"strings"
)

func codeReviewPrompt(language string, code string, tests []string) string {
	return fmt.Sprintf(`Please analyze this %s code and provide feedback:
%s

Tests to check against:
%s

Provide the analysis in the following format:
1. Code correctness
2. Code efficiency
3. Best practices
4. Suggestions for improvement
5. Test results

Additionally point out:
- Possible performance problems
- Optimization recommendations
- Potential security issues

If every test would pass, state "all tests passed" explicitly.`,
		language, code, strings.Join(tests, "\n"))
}

func hintPrompt(language string, code string, difficulty string) string {
	return fmt.Sprintf(`Analyze the following %s code for a learner at %s level:

%s

Write a hint that:
1. Points in the right direction
2. Explains the core concepts involved
3. Names likely mistakes
4. Suggests approaches to a solution

Match the hint to the level:
- beginner: basic concepts and a step by step explanation
- intermediate: general directions and key points
- advanced: minimal hints on the architectural level

Important: never reveal a complete solution.`,
		language, difficulty, code)
}

func questionGenerationPrompt(lessonContent string, difficulty string, numberOfQuestions int) string {
	return fmt.Sprintf(`Based on the following lesson content:
%s

Generate %d multiple choice questions at "%s" difficulty.

Requirements:
- Clear wording
- Plausible answer options
- Exactly one correct answer per question
- Difficulty matching the requested level

Format every question as:
{
  "question": "question text",
  "options": ["option1", "option2", "option3", "option4"],
  "correctAnswer": "the correct option",
  "points": point value as number,
  "timeLimit": seconds to answer as number
}

The questions should cover different aspects of the material.`,
		lessonContent, numberOfQuestions, difficulty)
}
