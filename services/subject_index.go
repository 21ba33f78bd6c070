package services

import "strings"

// ChapterInfo is the static routing metadata for one curriculum chapter.
type ChapterInfo struct {
	Title       string
	Description string
	Topics      []string
	Keywords    []string
}

// SubjectIndex holds the chapter metadata for one (class level, subject)
// pair. It backs both keyword sensing in the router and chapter creation
// during ingestion. Read-only after construction.
type SubjectIndex struct {
	ClassLevel int
	Subject    string
	Chapters   map[int]ChapterInfo
}

// HasChapter reports whether n is a known chapter number.
func (si *SubjectIndex) HasChapter(n int) bool {
	_, ok := si.Chapters[n]
	return ok
}

// ChapterTitle returns the title for a known chapter, or "Unknown".
func (si *SubjectIndex) ChapterTitle(n int) string {
	if info, ok := si.Chapters[n]; ok {
		return info.Title
	}
	return "Unknown"
}

// MatchKeywords returns the distinct index keywords found in the query,
// checked case-insensitively against every chapter's keyword and topic lists.
func (si *SubjectIndex) MatchKeywords(query string) []string {
	queryLower := strings.ToLower(query)
	seen := make(map[string]bool)
	var matches []string

	for _, info := range si.Chapters {
		for _, kw := range info.Keywords {
			if strings.Contains(queryLower, strings.ToLower(kw)) && !seen[kw] {
				seen[kw] = true
				matches = append(matches, kw)
			}
		}
		for _, topic := range info.Topics {
			if strings.Contains(queryLower, strings.ToLower(topic)) && !seen[topic] {
				seen[topic] = true
				matches = append(matches, topic)
			}
		}
	}

	return matches
}

// IndexFor returns the chapter index for a class level and subject, or nil
// when no curriculum metadata exists for the pair.
func IndexFor(classLevel int, subject string) *SubjectIndex {
	byClass, ok := subjectMetadata[classLevel]
	if !ok {
		return nil
	}
	chapters, ok := byClass[subject]
	if !ok || len(chapters) == 0 {
		return nil
	}
	return &SubjectIndex{
		ClassLevel: classLevel,
		Subject:    subject,
		Chapters:   chapters,
	}
}

var subjectMetadata = map[int]map[string]map[int]ChapterInfo{
	9: {
		"Physics":          physicsClass9,
		"Chemistry":        chemistryClass9,
		"Biology":          biologyClass9,
		"Computer Science": computerScienceClass9,
		"English":          englishClass9,
	},
	10: {
		"Physics":   physicsClass10,
		"Chemistry": chemistryClass10,
		"Biology":   biologyClass10,
	},
}

var physicsClass9 = map[int]ChapterInfo{
	1: {
		Title:       "Physical Quantities and Measurement",
		Description: "Covers fundamental and derived quantities, SI units, scientific notation, measuring instruments.",
		Topics:      []string{"physical quantities", "SI units", "measurement", "vernier caliper", "screw gauge", "significant figures", "scientific notation", "prefixes"},
		Keywords:    []string{"measure", "unit", "quantity", "instrument", "precision", "accuracy"},
	},
	2: {
		Title:       "Kinematics",
		Description: "Describes motion in one dimension including displacement, velocity, acceleration.",
		Topics:      []string{"motion", "displacement", "velocity", "acceleration", "equations of motion", "distance-time graph", "velocity-time graph", "free fall", "projectile"},
		Keywords:    []string{"speed", "move", "travel", "graph", "fall", "s=ut+1/2at^2", "v=u+at"},
	},
	3: {
		Title:       "Dynamics",
		Description: "Covers Newton's laws of motion, force, momentum, friction.",
		Topics:      []string{"force", "Newton laws", "momentum", "friction", "inertia", "action reaction", "circular motion", "centripetal force"},
		Keywords:    []string{"push", "pull", "F=ma", "Newton", "momentum", "friction", "circular"},
	},
	4: {
		Title:       "Turning Effect of Forces",
		Description: "Explains torque, equilibrium, center of gravity, couples, and stability.",
		Topics:      []string{"torque", "moment of force", "equilibrium", "center of gravity", "couple", "stability", "lever", "principle of moments"},
		Keywords:    []string{"rotate", "turn", "balance", "lever", "torque", "moment", "pivot"},
	},
	5: {
		Title:       "Gravitation",
		Description: "Covers gravitational force, Newton's law of gravitation, mass and weight.",
		Topics:      []string{"gravitation", "gravity", "mass", "weight", "gravitational field", "Newton law of gravitation", "g value", "satellites", "orbit"},
		Keywords:    []string{"gravity", "weight", "mass", "fall", "planet", "satellite", "orbit"},
	},
	6: {
		Title:       "Work and Energy",
		Description: "Describes work, energy, power, kinetic and potential energy.",
		Topics:      []string{"work", "energy", "power", "kinetic energy", "potential energy", "conservation of energy", "efficiency", "joule", "watt"},
		Keywords:    []string{"work", "energy", "power", "joule", "kinetic", "potential", "conserve"},
	},
	7: {
		Title:       "Properties of Matter",
		Description: "Covers states of matter, density, pressure, atmospheric pressure.",
		Topics:      []string{"density", "pressure", "atmospheric pressure", "Archimedes principle", "buoyancy", "Pascal law", "states of matter", "fluid"},
		Keywords:    []string{"density", "pressure", "float", "sink", "liquid", "gas", "solid", "buoyancy"},
	},
	8: {
		Title:       "Thermal Properties of Matter",
		Description: "Explains temperature, heat, thermal expansion, specific heat capacity.",
		Topics:      []string{"temperature", "heat", "thermal expansion", "specific heat", "latent heat", "thermometer", "Celsius", "Kelvin"},
		Keywords:    []string{"heat", "temperature", "expand", "specific heat", "latent", "thermal"},
	},
	9: {
		Title:       "Transfer of Heat",
		Description: "Covers conduction, convection, radiation, and applications.",
		Topics:      []string{"conduction", "convection", "radiation", "thermal conductivity", "insulation", "greenhouse effect", "thermos flask"},
		Keywords:    []string{"conduct", "convect", "radiate", "transfer", "insulate", "thermos"},
	},
}

var chemistryClass9 = map[int]ChapterInfo{
	1: {
		Title:       "Matter and Its States",
		Description: "Introduction to matter, properties, states, and classification.",
		Topics:      []string{"matter", "solid", "liquid", "gas", "properties of matter"},
	},
	2: {
		Title:       "Atomic Structure",
		Description: "Covers atomic models, subatomic particles, electronic configuration.",
		Topics:      []string{"atom", "electron", "proton", "neutron", "atomic model", "electronic configuration"},
	},
	3: {
		Title:       "Periodic Table and Periodicity",
		Description: "Organization of elements, groups, periods, and periodic trends.",
		Topics:      []string{"periodic table", "groups", "periods", "periodicity", "elements"},
	},
	4: {
		Title:       "Chemical Bonding",
		Description: "Ionic and covalent bonds, electronegativity, bond formation.",
		Topics:      []string{"ionic bond", "covalent bond", "electronegativity", "chemical bonding"},
	},
	5: {
		Title:       "Physical States of Matter",
		Description: "Gas laws, kinetic theory, changes of state.",
		Topics:      []string{"gas laws", "kinetic theory", "Boyle's law", "Charles law", "states of matter"},
	},
	6: {
		Title:       "Solutions",
		Description: "Types of solutions, concentration, solubility.",
		Topics:      []string{"solution", "solute", "solvent", "concentration", "solubility"},
	},
	7: {
		Title:       "Electrochemistry",
		Description: "Electrochemical cells, oxidation-reduction reactions.",
		Topics:      []string{"electrochemistry", "oxidation", "reduction", "electrochemical cell"},
	},
	8: {
		Title:       "Chemical Reactivity",
		Description: "Types of chemical reactions, reactivity series.",
		Topics:      []string{"chemical reactions", "reactivity", "reactivity series", "displacement"},
	},
	9: {
		Title:       "Environmental Chemistry",
		Description: "Atmosphere, pollution, greenhouse effect.",
		Topics:      []string{"environment", "pollution", "atmosphere", "greenhouse effect"},
	},
	10: {
		Title:       "Acids, Bases and Salts",
		Description: "Properties of acids, bases, pH scale, neutralization.",
		Topics:      []string{"acids", "bases", "pH", "neutralization", "salts"},
	},
	11: {
		Title:       "Organic Chemistry",
		Description: "Hydrocarbons, functional groups, nomenclature.",
		Topics:      []string{"organic chemistry", "hydrocarbons", "alkanes", "alkenes", "functional groups"},
	},
	12: {
		Title:       "Biochemistry",
		Description: "Carbohydrates, proteins, lipids, enzymes.",
		Topics:      []string{"biochemistry", "carbohydrates", "proteins", "lipids", "enzymes"},
	},
}

var biologyClass9 = map[int]ChapterInfo{
	1: {
		Title:       "Introduction to Biology",
		Description: "What is biology, branches, importance, and scientific method.",
		Topics:      []string{"biology", "branches of biology", "scientific method", "biodiversity"},
	},
	2: {
		Title:       "Solving a Biological Problem",
		Description: "Scientific inquiry, hypothesis, experiments, data analysis.",
		Topics:      []string{"scientific method", "hypothesis", "experiment", "data analysis"},
	},
	3: {
		Title:       "Biodiversity",
		Description: "Classification of organisms, five kingdoms, taxonomy.",
		Topics:      []string{"biodiversity", "classification", "taxonomy", "kingdoms", "species"},
	},
	4: {
		Title:       "Cells and Tissues",
		Description: "Cell structure, organelles, plant and animal cells, tissues.",
		Topics:      []string{"cell", "organelles", "tissues", "plant cell", "animal cell"},
	},
	5: {
		Title:       "Cell Cycle",
		Description: "Cell division, mitosis, meiosis, cell growth.",
		Topics:      []string{"cell cycle", "mitosis", "meiosis", "cell division"},
	},
	6: {
		Title:       "Enzymes",
		Description: "Enzyme structure, function, factors affecting enzyme activity.",
		Topics:      []string{"enzymes", "catalysis", "enzyme activity", "active site"},
	},
	7: {
		Title:       "Bioenergetics",
		Description: "Photosynthesis, respiration, ATP, energy transfer.",
		Topics:      []string{"photosynthesis", "respiration", "ATP", "bioenergetics"},
	},
	8: {
		Title:       "Nutrition",
		Description: "Nutrients, balanced diet, digestion, absorption.",
		Topics:      []string{"nutrition", "nutrients", "diet", "digestion", "absorption"},
	},
	9: {
		Title:       "Transport",
		Description: "Circulatory system, blood, heart, transportation in plants.",
		Topics:      []string{"transport", "circulatory system", "blood", "heart", "xylem", "phloem"},
	},
	10: {
		Title:       "Gaseous Exchange",
		Description: "Respiratory system, breathing, gas exchange in plants and animals.",
		Topics:      []string{"respiration", "breathing", "lungs", "gas exchange", "stomata"},
	},
}

// Only chapters 1, 2, 3 and 5 have published notes.
var computerScienceClass9 = map[int]ChapterInfo{
	1: {
		Title:       "Introduction to Computer Science",
		Description: "Basic concepts, computer systems, hardware and software.",
		Topics:      []string{"computer", "hardware", "software", "computer system"},
	},
	2: {
		Title:       "Computer Architecture",
		Description: "CPU, memory, storage devices, input/output devices.",
		Topics:      []string{"CPU", "memory", "storage", "input devices", "output devices"},
	},
	3: {
		Title:       "Number Systems",
		Description: "Binary, decimal, hexadecimal, conversion between systems.",
		Topics:      []string{"binary", "decimal", "hexadecimal", "number systems", "conversion"},
	},
	5: {
		Title:       "Operating Systems",
		Description: "Types of OS, functions, file management.",
		Topics:      []string{"operating system", "OS", "file management", "Windows", "Linux"},
	},
}

var englishClass9 = map[int]ChapterInfo{
	1: {
		Title:       "Grammar - Parts of Speech",
		Description: "Nouns, pronouns, verbs, adjectives, adverbs, prepositions.",
		Topics:      []string{"grammar", "parts of speech", "noun", "verb", "adjective", "adverb"},
	},
	2: {
		Title:       "Tenses",
		Description: "Present, past, future tenses and their forms.",
		Topics:      []string{"tenses", "present tense", "past tense", "future tense"},
	},
	3: {
		Title:       "Active and Passive Voice",
		Description: "Converting between active and passive voice.",
		Topics:      []string{"active voice", "passive voice", "voice conversion"},
	},
	4: {
		Title:       "Direct and Indirect Speech",
		Description: "Reported speech, narration changes.",
		Topics:      []string{"direct speech", "indirect speech", "reported speech", "narration"},
	},
	5: {
		Title:       "Reading Comprehension",
		Description: "Understanding passages, inference, main idea.",
		Topics:      []string{"comprehension", "reading", "inference", "main idea"},
	},
	6: {
		Title:       "Essay Writing",
		Description: "Types of essays, structure, introduction, conclusion.",
		Topics:      []string{"essay", "writing", "paragraph", "introduction", "conclusion"},
	},
	7: {
		Title:       "Letter Writing",
		Description: "Formal and informal letters, format, structure.",
		Topics:      []string{"letter", "formal letter", "informal letter", "letter format"},
	},
	8: {
		Title:       "Poetry Analysis",
		Description: "Understanding poetry, literary devices, themes.",
		Topics:      []string{"poetry", "literary devices", "metaphor", "simile", "theme"},
	},
	9: {
		Title:       "Sentence Structure",
		Description: "Simple, compound, complex sentences.",
		Topics:      []string{"sentence", "clause", "phrase", "sentence structure"},
	},
	10: {
		Title:       "Punctuation and Capitalization",
		Description: "Proper use of punctuation marks and capitalization rules.",
		Topics:      []string{"punctuation", "capitalization", "comma", "period", "apostrophe"},
	},
	11: {
		Title:       "Vocabulary Building",
		Description: "Word meanings, synonyms, antonyms, idioms.",
		Topics:      []string{"vocabulary", "synonyms", "antonyms", "idioms", "phrases"},
	},
	12: {
		Title:       "Story Writing and Creative Writing",
		Description: "Narrative techniques, plot development, character building.",
		Topics:      []string{"story writing", "narrative", "creative writing", "plot", "character"},
	},
}

var physicsClass10 = map[int]ChapterInfo{
	1: {
		Title:       "Heat Capacity and Modes of Heat Transfer",
		Description: "Covers heat capacity, specific heat capacity, and three modes of heat transfer.",
		Topics:      []string{"heat capacity", "specific heat capacity", "calorimetry", "conduction", "convection", "radiation"},
	},
	2: {
		Title:       "Thermal Transformations",
		Description: "Kinetic theory of matter, thermal expansion, and phase changes including latent heat.",
		Topics:      []string{"kinetic theory", "thermal expansion", "phase changes", "evaporation", "latent heat", "bimetallic strips"},
	},
	3: {
		Title:       "Waves",
		Description: "Wave motion, transverse and longitudinal waves, wavelength, frequency, amplitude.",
		Topics:      []string{"wave motion", "transverse waves", "longitudinal waves", "wavelength", "frequency", "amplitude"},
	},
	4: {
		Title:       "Sound",
		Description: "Production and propagation of sound waves, ultrasound, speed of sound, sonar.",
		Topics:      []string{"sound waves", "ultrasound", "infrasound", "speed of sound", "echo", "sonar"},
	},
	5: {
		Title:       "Optics",
		Description: "Reflection, refraction, refractive index, lenses, mirrors, optical instruments.",
		Topics:      []string{"reflection", "refraction", "refractive index", "Snell's law", "lenses", "mirrors"},
	},
	6: {
		Title:       "Electrostatics",
		Description: "Static electricity, electric charge, conductors and insulators, electric fields.",
		Topics:      []string{"static charge", "charge conservation", "conductors and insulators", "electric field", "Coulomb's law"},
	},
	7: {
		Title:       "Current Electricity",
		Description: "Electric current, potential difference, Ohm's law, resistance, circuits, power.",
		Topics:      []string{"electric current", "potential difference", "Ohm's law", "resistance", "circuits", "electrical power"},
	},
}

var chemistryClass10 = map[int]ChapterInfo{
	1: {
		Title:       "History of Chemistry",
		Description: "Scientific paradigms, conservation laws, and evolution of scientific ideas.",
		Topics:      []string{"conservation of mass", "scientific method", "atomic models", "phlogiston theory", "repeatability"},
	},
	2: {
		Title:       "Matter",
		Description: "Physical states of matter, phase transitions, kinetic particle theory, gas laws.",
		Topics:      []string{"states of matter", "phase transitions", "gas laws", "kinetic theory", "diffusion"},
	},
	3: {
		Title:       "Stoichiometry",
		Description: "Mole concept, limiting reactants, and yield calculations.",
		Topics:      []string{"mole concept", "limiting reactants", "percentage yield", "empirical formula", "molarity"},
	},
	4: {
		Title:       "Electrochemistry",
		Description: "Electrolysis, electroplating, galvanic cells, and electrochemical series.",
		Topics:      []string{"electrolysis", "electroplating", "galvanic cells", "electrochemical series", "fuel cells"},
	},
	5: {
		Title:       "Chemical Kinetics",
		Description: "Rates of chemical reactions, collision theory, activation energy, catalysts.",
		Topics:      []string{"reaction rates", "collision theory", "activation energy", "catalysts"},
	},
	6: {
		Title:       "Salts",
		Description: "Formation, properties, and preparation of salts; solubility and crystallization.",
		Topics:      []string{"ionic salts", "lattice structure", "solubility", "crystallization", "titration"},
	},
	7: {
		Title:       "Nitrogen, Sulfur, and Metals",
		Description: "Industrial chemical processes, acid rain, and metal reactivity.",
		Topics:      []string{"acid rain", "Haber process", "contact process", "metal reactivity", "amphoteric oxides"},
	},
}

var biologyClass10 = map[int]ChapterInfo{
	1: {
		Title:       "Digestive System",
		Description: "Structure and function of the human digestive system.",
		Topics:      []string{"alimentary canal", "chemical digestion", "enzymes", "absorption", "liver function"},
	},
	2: {
		Title:       "Blood Circulatory System",
		Description: "Blood composition, heart structure, blood vessels, and circulation pathways.",
		Topics:      []string{"blood components", "heart structure", "blood vessels", "circulation", "heart diseases"},
	},
	3: {
		Title:       "Respiratory System",
		Description: "Breathing mechanism and gas exchange in the alveoli.",
		Topics:      []string{"air passageway", "breathing mechanism", "gas exchange", "alveoli", "respiratory diseases"},
	},
	4: {
		Title:       "Urinary System",
		Description: "Kidney structure, nephron function, and urine formation.",
		Topics:      []string{"kidney structure", "nephron", "urine formation", "filtration", "osmoregulation"},
	},
	5: {
		Title:       "Nervous System",
		Description: "Organization of the nervous system, brain structure, and response coordination.",
		Topics:      []string{"CNS", "PNS", "brain structure", "neurons", "stimulus response"},
	},
	6: {
		Title:       "Animal Reproduction",
		Description: "Sexual reproduction in animals, hormonal regulation, gametogenesis.",
		Topics:      []string{"reproductive hormones", "spermatogenesis", "oogenesis", "fertilization"},
	},
	7: {
		Title:       "Inheritance",
		Description: "Chromosome structure, genes, and Mendelian genetics.",
		Topics:      []string{"chromosomes", "genes and alleles", "genotype and phenotype", "Mendelian genetics"},
	},
	8: {
		Title:       "Diseases",
		Description: "Infectious, non-infectious, and zoonotic diseases.",
		Topics:      []string{"disease classification", "infectious diseases", "zoonotic diseases", "vector-borne diseases"},
	},
	9: {
		Title:       "Immunity and the Immune System",
		Description: "Immune system structure and function, antibodies, vaccination.",
		Topics:      []string{"immune system", "antibodies", "cell-mediated immunity", "inflammation", "vaccination"},
	},
	10: {
		Title:       "Biotechnology",
		Description: "Biotechnology applications in agriculture and food production.",
		Topics:      []string{"biotechnology", "GM crops", "bio-fortification", "disease resistance"},
	},
	11: {
		Title:       "Biostatistics and Data Handling",
		Description: "Biostatistics and data analysis in biology, medicine, and agriculture.",
		Topics:      []string{"biostatistics", "data analysis", "epidemiology", "public health"},
	},
}
