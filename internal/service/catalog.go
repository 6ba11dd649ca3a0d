package service

// DefaultCatalog is the seed list offered to clients picking endpoints.
var DefaultCatalog = []string{
	// North America
	"Tom Hanks", "Leonardo DiCaprio", "Brad Pitt", "Jennifer Lopez", "Johnny Depp",
	"Meryl Streep", "Denzel Washington", "Robert De Niro", "Scarlett Johansson",
	"Will Smith", "Keanu Reeves", "Angelina Jolie", "Sandra Bullock", "Tom Cruise",
	"Natalie Portman", "Emma Stone", "Ryan Gosling", "Ryan Reynolds",
	"Taylor Swift", "Beyoncé", "Rihanna", "Lady Gaga", "Drake", "Eminem",
	"Jay-Z", "Ariana Grande", "Selena Gomez", "Justin Bieber", "The Weeknd",

	// Europe
	"Adele", "Ed Sheeran", "Dua Lipa", "Harry Styles", "Daniel Craig", "Emma Watson",
	"Benedict Cumberbatch", "Tom Hardy", "Keira Knightley", "Penélope Cruz",
	"Javier Bardem", "Antonio Banderas", "Marion Cotillard", "Monica Bellucci",
	"Gérard Depardieu", "Saoirse Ronan", "Mads Mikkelsen", "Millie Bobby Brown",

	// Latin America
	"Shakira", "Bad Bunny", "Salma Hayek", "Gael García Bernal", "Diego Luna",
	"Pedro Pascal", "Anitta", "Eugenio Derbez", "Karol G", "Maluma",

	// Africa
	"Charlize Theron", "Lupita Nyong'o", "Wizkid", "Burna Boy", "Davido",
	"Black Coffee", "Trevor Noah", "Tiwa Savage",

	// Middle East
	"Gal Gadot", "Mohamed Salah", "Haifa Wehbe",

	// South Asia
	"Shah Rukh Khan", "Amitabh Bachchan", "Aamir Khan", "Salman Khan",
	"Deepika Padukone", "Priyanka Chopra", "Aishwarya Rai Bachchan", "Alia Bhatt",
	"Ranveer Singh", "Ranbir Kapoor",

	// East Asia
	"Jackie Chan", "Jet Li", "Donnie Yen", "Andy Lau", "Gong Li", "Zhang Ziyi",
	"Fan Bingbing", "Jay Chou", "Ken Watanabe", "Rinko Kikuchi",

	// Korea
	"Song Kang-ho", "Lee Min-ho", "IU (singer)", "Jungkook", "Jennie",

	// Oceania
	"Cate Blanchett", "Nicole Kidman", "Hugh Jackman", "Margot Robbie", "Taika Waititi",

	// Sports
	"Cristiano Ronaldo", "Lionel Messi", "Novak Djokovic", "Serena Williams",
}
