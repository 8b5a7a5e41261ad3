package rubric

// Default returns the built-in process-focused rubric: 80% of the points
// reward the collaboration process, 20% the final essay.
func Default() Rubric {
	return Rubric{
		Name:        "AI-Assisted Writing Assignment Rubric",
		Description: "A Process-Focused Approach (80% Process / 20% Product)",
		Version:     "1.0",
		TotalPoints: 100,
		Categories: []Category{
			{
				Name:   "AI Collaboration Process",
				Weight: 50,
				Order:  0,
				Criteria: []Criterion{
					{
						Name:   "Starting Point & Initial Thinking",
						Points: 10,
						Order:  0,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 9, MaxPoints: 10, Description: "Demonstrates clear articulation of initial position and research question. Shows genuine uncertainty or curiosity about the topic. Beginning prompts reveal student's own thinking before AI influence.", Order: 0},
							{Name: LevelProficient, MinPoints: 7, MaxPoints: 8, Description: "States initial position clearly. Shows some original thinking, though may be somewhat generic. Beginning prompts are functional.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 5, MaxPoints: 6, Description: "Vague or unclear initial position. Prompts show minimal original thought - mostly asks AI to 'write an essay about X.'", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 4, Description: "No clear starting point. Simply asks AI to generate content with no personal input or direction.", Order: 3},
						},
					},
					{
						Name:   "Iterative Refinement & Critical Engagement",
						Points: 15,
						Order:  1,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 14, MaxPoints: 15, Description: "Extensive back-and-forth with AI showing deep engagement. Challenges AI responses, asks for clarification, requests revisions, and pushes for deeper analysis. Clearly directs AI rather than accepting first drafts. Shows 10+ meaningful exchanges.", Order: 0},
							{Name: LevelProficient, MinPoints: 11, MaxPoints: 13, Description: "Good iterative process with multiple rounds of refinement. Questions some AI outputs and requests improvements. Shows 6-9 meaningful exchanges with clear progression.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 8, MaxPoints: 10, Description: "Limited iteration. Accepts most AI outputs with minimal questioning. May request minor edits but doesn't push for deeper thinking. Shows 3-5 exchanges.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 7, Description: "Minimal iteration. Copy-pastes first or second AI response. Little to no refinement or questioning of AI outputs.", Order: 3},
						},
					},
					{
						Name:   "Perspective Exploration & Intellectual Honesty",
						Points: 15,
						Order:  2,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 14, MaxPoints: 15, Description: "Actively seeks out opposing viewpoints and challenges to their thesis. Asks AI to provide counterarguments and steelman opposing positions. Engages with these perspectives thoughtfully - either refuting them with evidence or integrating valid points. Shows evolution of thinking.", Order: 0},
							{Name: LevelProficient, MinPoints: 11, MaxPoints: 13, Description: "Explores alternative perspectives. Considers some counterarguments. Shows willingness to adjust position based on new information. May not deeply engage with strongest opposing views.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 8, MaxPoints: 10, Description: "Acknowledges other perspectives exist but doesn't deeply engage with them. Primarily seeks confirmation of original position. Superficial treatment of counterarguments.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 7, Description: "Only seeks information supporting initial position. Ignores or dismisses opposing viewpoints. Shows no evolution of thinking or intellectual flexibility.", Order: 3},
						},
					},
					{
						Name:   "Research & Source Integration",
						Points: 10,
						Order:  3,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 9, MaxPoints: 10, Description: "Requests specific sources, asks AI to verify claims, fact-checks AI outputs. Integrates research strategically. Demonstrates awareness of AI limitations regarding sources. Independently verifies critical facts.", Order: 0},
							{Name: LevelProficient, MinPoints: 7, MaxPoints: 8, Description: "Asks for sources and some evidence. Shows awareness that claims need support. Some verification of AI-provided information.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 5, MaxPoints: 6, Description: "Minimal research requests. Largely accepts AI claims without verification. Few or generic source requests.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 4, Description: "No research process visible. Accepts all AI outputs as fact. No verification or source-checking evident.", Order: 3},
						},
					},
				},
			},
			{
				Name:   "Metacognitive Awareness & Learning",
				Weight: 20,
				Order:  1,
				Criteria: []Criterion{
					{
						Name:   "Process Reflection Quality",
						Points: 10,
						Order:  0,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 9, MaxPoints: 10, Description: "Demonstrates sophisticated understanding of own learning process. Articulates how AI collaboration changed their thinking. Identifies specific moments of insight or difficulty. Shows awareness of both AI's value and limitations.", Order: 0},
							{Name: LevelProficient, MinPoints: 7, MaxPoints: 8, Description: "Reflects on learning process with specific examples. Discusses how AI helped and hindered. Shows some self-awareness about the collaboration.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 5, MaxPoints: 6, Description: "Basic reflection present but may be superficial. Generic statements about AI being 'helpful.' Limited specific examples or insights.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 4, Description: "No meaningful reflection. Treats AI as merely a writing tool. No evidence of learning or growth through the process.", Order: 3},
						},
					},
					{
						Name:   "Intellectual Growth & Position Evolution",
						Points: 10,
						Order:  1,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 9, MaxPoints: 10, Description: "Chat history shows clear evolution of thinking. Student's position becomes more nuanced, sophisticated, or changes entirely based on research and reasoning. Can articulate why and how views shifted.", Order: 0},
							{Name: LevelProficient, MinPoints: 7, MaxPoints: 8, Description: "Some evolution visible in chat history. Position shows refinement or deepening. Student acknowledges learning new information that affected their thinking.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 5, MaxPoints: 6, Description: "Minimal change in position from start to finish. May add detail but fundamental thinking remains static. Limited evidence of new learning.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 4, Description: "No evolution of thinking. Final position essentially identical to starting position. Appears to use AI only to articulate pre-existing views.", Order: 3},
						},
					},
				},
			},
			{
				Name:   "Transparency & Academic Integrity",
				Weight: 10,
				Order:  2,
				Criteria: []Criterion{
					{
						Name:   "Complete Documentation",
						Points: 5,
						Order:  0,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 5, MaxPoints: 5, Description: "Submits complete, unedited chat history from first prompt to final revision. All AI interactions clearly documented. Timestamps preserved. Nothing omitted.", Order: 0},
							{Name: LevelProficient, MinPoints: 4, MaxPoints: 4, Description: "Submits comprehensive chat history with minor gaps. Essentially complete documentation of AI collaboration.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 3, MaxPoints: 3, Description: "Chat history submitted but with noticeable gaps or edited portions. Some interactions may be missing.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 2, Description: "Incomplete, heavily edited, or suspiciously brief chat history. Appears to have hidden interactions or cherry-picked exchanges.", Order: 3},
						},
					},
					{
						Name:   "Honesty & Attribution",
						Points: 5,
						Order:  1,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 5, MaxPoints: 5, Description: "Crystal clear about what came from AI vs. own thinking. Acknowledges when copying AI language directly. Honest about struggles, mistakes, and false starts in the process.", Order: 0},
							{Name: LevelProficient, MinPoints: 4, MaxPoints: 4, Description: "Clearly distinguishes AI contributions from personal work. Appropriate attribution. Generally transparent about the process.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 3, MaxPoints: 3, Description: "Somewhat unclear about AI vs. personal contributions. Attribution may be inconsistent. Some ambiguity about sources of ideas.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 2, Description: "Presents AI-generated content as entirely own work. Misleading about extent or nature of AI collaboration. Dishonest documentation.", Order: 3},
						},
					},
				},
			},
			{
				Name:   "Final Essay Quality",
				Weight: 20,
				Order:  3,
				Criteria: []Criterion{
					{
						Name:   "Coherence & Structure",
						Points: 7,
						Order:  0,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 6, MaxPoints: 7, Description: "Essay has clear thesis, logical flow, and sophisticated organization. Transitions work smoothly. Reader can follow complex argument easily.", Order: 0},
							{Name: LevelProficient, MinPoints: 5, MaxPoints: 5, Description: "Clear structure with thesis and supporting points. Generally logical organization. Minor issues with flow or transitions.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 3, MaxPoints: 4, Description: "Basic structure present but may be formulaic or unclear. Organization issues make argument harder to follow.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 2, Description: "Poor or absent structure. No clear thesis. Disorganized or incoherent.", Order: 3},
						},
					},
					{
						Name:   "Depth & Insight",
						Points: 7,
						Order:  1,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 6, MaxPoints: 7, Description: "Essay demonstrates genuine insight and original thinking. Goes beyond surface-level analysis. Shows intellectual engagement with complex ideas.", Order: 0},
							{Name: LevelProficient, MinPoints: 5, MaxPoints: 5, Description: "Solid analysis with some depth. Makes valid points beyond obvious observations. Shows understanding of topic.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 3, MaxPoints: 4, Description: "Superficial treatment of topic. Mostly surface-level observations. Limited depth or insight.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 2, Description: "Shallow or incorrect analysis. Misses key points. No meaningful engagement with topic complexity.", Order: 3},
						},
					},
					{
						Name:   "Writing Quality",
						Points: 6,
						Order:  2,
						Levels: []Level{
							{Name: LevelExemplary, MinPoints: 5, MaxPoints: 6, Description: "Polished prose with clear voice. Minimal errors. Appropriate tone and style. Evidence of careful editing.", Order: 0},
							{Name: LevelProficient, MinPoints: 4, MaxPoints: 4, Description: "Clear writing with few errors. Appropriate academic style. Generally well-edited.", Order: 1},
							{Name: LevelDeveloping, MinPoints: 2, MaxPoints: 3, Description: "Functional writing but may be awkward or contain errors. Style inconsistencies. Needs more editing.", Order: 2},
							{Name: LevelInadequate, MinPoints: 0, MaxPoints: 1, Description: "Poor writing quality. Numerous errors. Inappropriate style or tone. Appears unedited.", Order: 3},
						},
					},
				},
			},
		},
	}
}
