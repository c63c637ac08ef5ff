package lexicon

// Default returns the built-in Russian-language lexicon.
// Each call returns a fresh copy so callers may extend it before compiling.
func Default() Lexicon {
	return Lexicon{
		Categories: []Category{
			{
				Name: "terrorism",
				Keywords: []string{
					"теракт", "теракты", "терроризм", "террорист", "террористы",
					"смертник", "смертники", "джихад", "шахид", "шахиды",
					"взорвать", "подготовка теракта", "террористическая ячейка",
					"финансирование терроризма", "вербовка террористов",
				},
			},
			{
				Name: "extremism",
				Keywords: []string{
					"экстремизм", "экстремисты правы", "свержение власти", "свергнуть правительство",
					"захват власти", "вооруженное восстание", "государственный переворот",
					"радикалы герои", "запрещенная организация", "экстремистская группировка",
					"сепаратизм", "разрушение конституции",
				},
			},
			{
				Name: "hate_speech",
				Keywords: []string{
					"низшая раса", "расовая ненависть", "расовое превосходство", "этническая чистка",
					"неверные должны умереть", "национальные предатели", "межнациональная рознь",
					"религиозная ненависть", "классовые враги", "социальные паразиты",
				},
			},
			{
				Name: "violence",
				Keywords: []string{
					"убить", "убью", "убьем", "расстрелять", "расстрел", "резня", "резню",
					"зарезать", "избиение", "кровавая расправа", "физическая расправа",
					"обстрел", "обстрела", "обстреле", "обстрелы",
				},
			},
			{
				Name: "weapons",
				Keywords: []string{
					"взрывчатка", "взрывчатку", "бомба", "бомбу", "тротил", "детонатор",
					"граната", "гранаты", "оружие", "автомат калашникова",
					"самодельное взрывное устройство",
				},
			},
			{
				Name: "calls_to_action",
				Keywords: []string{
					"присоединяйтесь к борьбе", "берите оружие", "к оружию", "выходите на улицы",
					"вставайте на борьбу", "вступайте в ряды", "все на баррикады",
				},
			},
		},
		ThreatPatterns: []string{
			`\b(?:я|мы)\s+(?:взорву|взорвем|подожгу|подожжем|устрою теракт)\b`,
			`\b(?:готовлю|готовим|планирую|планируем)\s+(?:теракт|взрыв|атаку|убийство|нападение)\b`,
			`\b(?:скоро|завтра|сегодня|на днях)\s+(?:будет|произойдет|устрою)\s+(?:взрыв|теракт|расстрел)\b`,
			`\b(?:заложу|заложим|установлю)\s+(?:бомбу|взрывчатку|мину)\b`,
			`\b(?:свергну|свергнем)\s+(?:власть|правительство)\b`,
			`\b(?:устрою|устроим|организую)\s+(?:переворот|восстание|резню)\b`,
			`\b(?:расстреляю|расстреляем|зарежу|зарежем)\s+(?:всех|их|врагов)\b`,
			`\b(?:отомщу|отомстим)\s+(?:за|всем|предателям)\b`,
			`\b(?:в|на)\s+(?:школе|больнице|метро|вокзале|площади)\s+(?:взорву|устрою|нападу)\b`,
			`\b(?:послезавтра|в\s+\d+)\s+(?:взорву|убью|нападу|атакую)\b`,
			`\bi\s+will\s+(?:blow\s+up|bomb|shoot)\b`,
			`\bpreparing\s+(?:an?\s+)?(?:attack|bombing)\b`,
		},
		HateSpeechPatterns: []string{
			`\b(?:убить|убью|убьем|уничтожить|уничтожим)\s+(?:всех|этих)\s+(?:[а-яё]+ов|[а-яё]+ев|[а-яё]+цев)\b`,
			`\b(?:смерть|смерти)\s+(?:[а-яё]+ам|неверным|иноверцам|предателям)\b`,
			`\b(?:убить|уничтожить)\s+(?:всех|этих)\s+(?:мусульман|христиан|иудеев|буддистов|неверных)\b`,
			`\b(?:расовая|этническая)\s+(?:чистка|война|месть)\b`,
			`\b(?:низшая|грязная|паразитическая)\s+раса\b`,
			`\b(?:враг|враги|предатели)\s+(?:должны|будут)\s+(?:умереть|погибнуть|исчезнуть)\b`,
			`\b(?:месть|расправа)\s+(?:будет|неизбежна)\b`,
			`\b(?:кровь|кровью)\s+(?:отомстим|смоем)\b`,
			`\bdeath\s+to\s+(?:the\s+)?\w+`,
			`\bkill\s+them\s+all\b`,
		},
		NewsMarkers: []string{
			"сообщает", "новости", "по данным", "источник", "корреспондент",
			"агентство", "пресс-служба", "официально", "заявил", "сообщил",
			"reports", "according to", "news agency", "stated", "press service",
		},
		EmotionalWords: []string{
			"ярость", "гнев", "ненависть", "злость", "бешенство", "ужас", "страх",
		},
	}
}
