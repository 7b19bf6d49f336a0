package registry

import (
	"time"

	"f1weekendsim/pkg/helper"
)

// Ratings below are authored on a 1-100 scale and stored in [0,1].

func driver(id, name, team string, number int, nationality string, age, experience int, wet, dry, overtaking, consistency, aggression float64, historicalID string) Driver {
	return Driver{
		ID:           id,
		Name:         name,
		Code:         helper.DriverCode(name),
		Number:       number,
		Nationality:  nationality,
		Age:          age,
		TeamID:       team,
		Experience:   experience,
		SkillWet:     wet / 100,
		SkillDry:     dry / 100,
		Overtaking:   overtaking / 100,
		Consistency:  consistency / 100,
		Aggression:   aggression / 100,
		HistoricalID: historicalID,
	}
}

func team(id, name, constructor, engine string, performance, reliability, pit, development, aero, power float64, color, historicalID string) Team {
	return Team{
		ID:              id,
		Name:            name,
		Constructor:     constructor,
		Engine:          engine,
		Performance:     performance / 100,
		Reliability:     reliability / 100,
		PitEfficiency:   pit / 100,
		DevelopmentRate: development / 100,
		Aerodynamics:    aero / 100,
		Power:           power / 100,
		Color:           color,
		HistoricalID:    historicalID,
	}
}

func track(id, name, country, city string, length float64, laps, corners, straights, topSpeed, downforce, wear, braking, overtaking int, month time.Month, day int, climate Climate) Track {
	return Track{
		ID:                   id,
		Name:                 name,
		Country:              country,
		City:                 city,
		LengthKm:             length,
		Laps:                 laps,
		Corners:              corners,
		Straights:            straights,
		TopSpeed:             topSpeed,
		Downforce:            downforce,
		TyreWear:             wear,
		Braking:              braking,
		OvertakingDifficulty: overtaking,
		Date:                 time.Date(Season, month, day, 0, 0, 0, 0, time.UTC),
		Climate:              climate,
	}
}

const Season = 2025

var (
	temperate = Climate{Kind: Temperate}
	cool      = Climate{Kind: Temperate, TempOffset: -3}
	wetCool   = Climate{Kind: WetProne, TempOffset: -3}
	wet       = Climate{Kind: WetProne}
	wetHot    = Climate{Kind: WetProne, TempOffset: 8}
	aridHot   = Climate{Kind: Arid, TempOffset: 8}
	arid      = Climate{Kind: Arid}
)

func defaultDrivers() []Driver {
	return []Driver{
		driver("verstappen", "Max Verstappen", "red_bull", 1, "Dutch", 28, 11, 94, 96, 93, 92, 85, "max_verstappen"),
		driver("tsunoda", "Yuki Tsunoda", "red_bull", 22, "Japanese", 25, 5, 78, 80, 78, 76, 82, "tsunoda"),
		driver("leclerc", "Charles Leclerc", "ferrari", 16, "Monegasque", 28, 8, 88, 90, 87, 84, 82, "leclerc"),
		driver("hamilton", "Lewis Hamilton", "ferrari", 44, "British", 40, 19, 85, 86, 85, 84, 75, "hamilton"),
		driver("russell", "George Russell", "mercedes", 63, "British", 27, 6, 92, 93, 90, 89, 83, "russell"),
		driver("antonelli", "Kimi Antonelli", "mercedes", 87, "Italian", 19, 0, 90, 89, 85, 82, 83, "antonelli"),
		driver("norris", "Lando Norris", "mclaren", 4, "British", 26, 7, 96, 97, 94, 95, 87, "norris"),
		driver("piastri", "Oscar Piastri", "mclaren", 81, "Australian", 24, 3, 92, 93, 90, 91, 85, "piastri"),
		driver("alonso", "Fernando Alonso", "aston_martin", 14, "Spanish", 44, 24, 85, 87, 86, 82, 88, "alonso"),
		driver("stroll", "Lance Stroll", "aston_martin", 18, "Canadian", 26, 9, 82, 83, 80, 79, 75, "stroll"),
		driver("gasly", "Pierre Gasly", "alpine", 10, "French", 29, 9, 80, 82, 80, 79, 78, "gasly"),
		driver("doohan", "Jack Doohan", "alpine", 5, "Australian", 21, 0, 76, 77, 75, 72, 70, "doohan"),
		driver("hulkenberg", "Nico Hulkenberg", "kick_sauber", 27, "German", 38, 12, 83, 84, 82, 84, 78, "hulkenberg"),
		driver("bortoleto", "Gabriel Bortoleto", "kick_sauber", 20, "Brazilian", 20, 0, 75, 76, 74, 70, 72, "bortoleto"),
		driver("lawson", "Liam Lawson", "racing_bulls", 15, "New Zealander", 23, 2, 77, 78, 77, 75, 76, "lawson"),
		driver("hadjar", "Isack Hadjar", "racing_bulls", 38, "French", 19, 0, 80, 81, 79, 76, 80, "hadjar"),
		driver("albon", "Alexander Albon", "williams", 23, "Thai", 29, 7, 86, 88, 84, 85, 79, "albon"),
		driver("sainz", "Carlos Sainz", "williams", 55, "Spanish", 31, 11, 90, 92, 89, 90, 78, "sainz"),
		driver("ocon", "Esteban Ocon", "haas", 31, "French", 29, 9, 86, 87, 85, 84, 82, "ocon"),
		driver("bearman", "Oliver Bearman", "haas", 50, "British", 20, 1, 83, 86, 84, 80, 85, "bearman"),
	}
}

func defaultTeams() []Team {
	return []Team{
		team("red_bull", "Red Bull Racing", "Red Bull", "Red Bull Powertrains", 95, 92, 94, 93, 97, 94, "#3671C6", "red_bull"),
		team("ferrari", "Ferrari", "Ferrari", "Ferrari", 93, 88, 92, 90, 93, 95, "#E8002D", "ferrari"),
		team("mercedes", "Mercedes", "Mercedes", "Mercedes", 92, 94, 95, 91, 92, 93, "#27F4D2", "mercedes"),
		team("mclaren", "McLaren", "McLaren", "Mercedes", 94, 90, 93, 92, 95, 93, "#FF8000", "mclaren"),
		team("aston_martin", "Aston Martin", "Aston Martin", "Mercedes", 88, 86, 90, 87, 89, 93, "#229971", "aston_martin"),
		team("alpine", "Alpine", "Alpine", "Renault", 84, 82, 88, 85, 86, 87, "#FF87BC", "alpine"),
		team("williams", "Williams", "Williams", "Mercedes", 83, 85, 87, 86, 85, 93, "#64C4FF", "williams"),
		team("racing_bulls", "Racing Bulls", "Racing Bulls", "Red Bull Powertrains", 82, 87, 85, 85, 84, 94, "#6692FF", "rb"),
		team("kick_sauber", "Kick Sauber", "Sauber", "Ferrari", 80, 83, 84, 80, 82, 95, "#52E252", "sauber"),
		team("haas", "Haas", "Haas", "Ferrari", 81, 80, 81, 82, 83, 95, "#B6BABD", "haas"),
	}
}

func defaultTracks() []Track {
	return []Track{
		track("australia", "Albert Park Circuit", "Australia", "Melbourne", 5.278, 58, 14, 4, 325, 5, 6, 7, 5, time.March, 16, temperate),
		track("china", "Shanghai International Circuit", "China", "Shanghai", 5.451, 56, 16, 3, 327, 6, 7, 8, 5, time.March, 23, temperate),
		track("japan", "Suzuka Circuit", "Japan", "Suzuka", 5.807, 53, 18, 2, 315, 9, 6, 7, 7, time.April, 6, wetCool),
		track("bahrain", "Bahrain International Circuit", "Bahrain", "Sakhir", 5.412, 57, 15, 4, 330, 6, 7, 7, 5, time.April, 13, aridHot),
		track("saudi_arabia", "Jeddah Corniche Circuit", "Saudi Arabia", "Jeddah", 6.174, 50, 27, 3, 350, 4, 5, 8, 6, time.April, 20, aridHot),
		track("miami", "Miami International Autodrome", "USA", "Miami", 5.412, 57, 19, 3, 340, 5, 6, 7, 4, time.May, 4, temperate),
		track("imola", "Autodromo Enzo e Dino Ferrari", "Italy", "Imola", 4.909, 63, 19, 2, 320, 7, 5, 9, 8, time.May, 18, temperate),
		track("monaco", "Circuit de Monaco", "Monaco", "Monte Carlo", 3.337, 78, 19, 1, 290, 10, 3, 10, 10, time.May, 25, temperate),
		track("spain", "Circuit de Barcelona-Catalunya", "Spain", "Barcelona", 4.675, 66, 16, 2, 325, 8, 7, 6, 7, time.June, 1, temperate),
		track("canada", "Circuit Gilles Villeneuve", "Canada", "Montreal", 4.361, 70, 14, 3, 330, 6, 8, 8, 4, time.June, 15, cool),
		track("austria", "Red Bull Ring", "Austria", "Spielberg", 4.318, 71, 10, 3, 340, 5, 6, 7, 3, time.June, 29, temperate),
		track("britain", "Silverstone Circuit", "Great Britain", "Silverstone", 5.891, 52, 18, 2, 330, 8, 7, 7, 5, time.July, 6, wetCool),
		track("belgium", "Circuit de Spa-Francorchamps", "Belgium", "Spa", 7.004, 44, 19, 2, 350, 6, 5, 9, 4, time.July, 27, wetCool),
		track("hungary", "Hungaroring", "Hungary", "Budapest", 4.381, 70, 14, 1, 315, 9, 5, 7, 9, time.August, 3, temperate),
		track("netherlands", "Circuit Zandvoort", "Netherlands", "Zandvoort", 4.259, 72, 14, 2, 315, 8, 7, 7, 7, time.August, 31, temperate),
		track("monza", "Autodromo Nazionale Monza", "Italy", "Monza", 5.793, 53, 11, 4, 360, 1, 8, 9, 4, time.September, 7, temperate),
		track("azerbaijan", "Baku City Circuit", "Azerbaijan", "Baku", 6.003, 51, 20, 2, 350, 4, 5, 8, 6, time.September, 21, temperate),
		track("singapore", "Marina Bay Street Circuit", "Singapore", "Singapore", 4.94, 62, 23, 2, 325, 8, 9, 9, 7, time.October, 5, wetHot),
		track("usa", "Circuit of the Americas", "USA", "Austin", 5.513, 56, 20, 3, 330, 7, 6, 7, 5, time.October, 19, temperate),
		track("mexico", "Autódromo Hermanos Rodríguez", "Mexico", "Mexico City", 4.304, 71, 17, 3, 350, 6, 7, 8, 6, time.October, 26, temperate),
		track("brazil", "Autódromo José Carlos Pace", "Brazil", "São Paulo", 4.309, 71, 15, 2, 335, 7, 8, 7, 4, time.November, 9, wet),
		track("las_vegas", "Las Vegas Strip Circuit", "USA", "Las Vegas", 6.12, 50, 17, 3, 345, 3, 6, 7, 5, time.November, 22, arid),
		track("qatar", "Losail International Circuit", "Qatar", "Lusail", 5.38, 57, 16, 1, 330, 8, 9, 7, 6, time.November, 30, aridHot),
		track("abu_dhabi", "Yas Marina Circuit", "UAE", "Abu Dhabi", 5.281, 58, 16, 2, 335, 7, 6, 7, 7, time.December, 7, aridHot),
	}
}

// Default returns the 2025 baseline roster, teams and calendar.
func Default() *Registry {
	return New(defaultDrivers(), defaultTeams(), defaultTracks())
}
