package scripture

// builtinAliases maps normalized book abbreviations to canonical book names.
var builtinAliases = map[string]string{
	// Old Testament
	"gen": "Genesis", "ge": "Genesis", "gn": "Genesis", "genesis": "Genesis",
	"ex": "Exodus", "exo": "Exodus", "exodus": "Exodus",
	"lev": "Leviticus", "lv": "Leviticus", "leviticus": "Leviticus",
	"num": "Numbers", "nm": "Numbers", "nu": "Numbers", "numbers": "Numbers",
	"deut": "Deuteronomy", "dt": "Deuteronomy", "de": "Deuteronomy", "deuteronomy": "Deuteronomy",
	"jos": "Joshua", "josh": "Joshua", "joshua": "Joshua",
	"judg": "Judges", "jg": "Judges", "jdg": "Judges", "judges": "Judges",
	"rut": "Ruth", "ru": "Ruth", "ruth": "Ruth",
	"1 samuel": "1 Samuel", "1sa": "1 Samuel", "1 sam": "1 Samuel", "1sam": "1 Samuel", "i sam": "1 Samuel", "1st sam": "1 Samuel", "first samuel": "1 Samuel",
	"2 samuel": "2 Samuel", "2sa": "2 Samuel", "2 sam": "2 Samuel", "2sam": "2 Samuel", "ii sam": "2 Samuel", "2nd sam": "2 Samuel", "second samuel": "2 Samuel",
	"1 kings": "1 Kings", "1ki": "1 Kings", "1 kgs": "1 Kings", "1kings": "1 Kings", "first kings": "1 Kings",
	"2 kings": "2 Kings", "2ki": "2 Kings", "2 kgs": "2 Kings", "2kings": "2 Kings", "second kings": "2 Kings",
	"1 chronicles": "1 Chronicles", "1ch": "1 Chronicles", "1 chron": "1 Chronicles", "1chronicles": "1 Chronicles", "first chronicles": "1 Chronicles",
	"2 chronicles": "2 Chronicles", "2ch": "2 Chronicles", "2 chron": "2 Chronicles", "2chronicles": "2 Chronicles", "second chronicles": "2 Chronicles",
	"ezr": "Ezra", "ezra": "Ezra",
	"neh": "Nehemiah", "nehemiah": "Nehemiah",
	"est": "Esther", "esth": "Esther", "esther": "Esther",
	"job": "Job",
	"ps": "Psalms", "psa": "Psalms", "psalm": "Psalms", "psalms": "Psalms", "pss": "Psalms",
	"pr": "Proverbs", "prov": "Proverbs", "proverbs": "Proverbs",
	"ec": "Ecclesiastes", "ecc": "Ecclesiastes", "ecclesiastes": "Ecclesiastes",
	"song": "Song of Solomon", "so": "Song of Solomon", "song of solomon": "Song of Solomon", "song of songs": "Song of Solomon", "songs": "Song of Solomon", "ss": "Song of Solomon",
	"isa": "Isaiah", "is": "Isaiah", "isaiah": "Isaiah",
	"jer": "Jeremiah", "je": "Jeremiah", "jeremiah": "Jeremiah",
	"lam": "Lamentations", "lamentations": "Lamentations",
	"eze": "Ezekiel", "ezek": "Ezekiel", "ezekiel": "Ezekiel",
	"dan": "Daniel", "dn": "Daniel", "daniel": "Daniel",
	"hos": "Hosea", "hosea": "Hosea",
	"joe": "Joel", "jl": "Joel", "joel": "Joel",
	"amo": "Amos", "amos": "Amos",
	"oba": "Obadiah", "obadiah": "Obadiah",
	"jon": "Jonah", "jonah": "Jonah",
	"mic": "Micah", "micah": "Micah",
	"nah": "Nahum", "nahum": "Nahum",
	"hab": "Habakkuk", "habakkuk": "Habakkuk",
	"zep": "Zephaniah", "zeph": "Zephaniah", "zephaniah": "Zephaniah",
	"hag": "Haggai", "haggai": "Haggai",
	"zec": "Zechariah", "zech": "Zechariah", "zechariah": "Zechariah",
	"mal": "Malachi", "malachi": "Malachi",
	// New Testament
	"mat": "Matthew", "mt": "Matthew", "matt": "Matthew", "matthew": "Matthew",
	"mar": "Mark", "mk": "Mark", "mrk": "Mark", "mark": "Mark",
	"luk": "Luke", "lk": "Luke", "luke": "Luke",
	"joh": "John", "jn": "John", "john": "John",
	"act": "Acts", "acts": "Acts",
	"rom": "Romans", "ro": "Romans", "rm": "Romans", "romans": "Romans",
	"1 corinthians": "1 Corinthians", "1co": "1 Corinthians", "1 cor": "1 Corinthians", "1cor": "1 Corinthians", "first corinthians": "1 Corinthians",
	"2 corinthians": "2 Corinthians", "2co": "2 Corinthians", "2 cor": "2 Corinthians", "2cor": "2 Corinthians", "second corinthians": "2 Corinthians",
	"gal": "Galatians", "ga": "Galatians", "galatians": "Galatians",
	"eph": "Ephesians", "ephesians": "Ephesians",
	"php": "Philippians", "phil": "Philippians", "philippians": "Philippians",
	"col": "Colossians", "colossians": "Colossians",
	"1 thessalonians": "1 Thessalonians", "1th": "1 Thessalonians", "1 thess": "1 Thessalonians", "1thessalonians": "1 Thessalonians",
	"2 thessalonians": "2 Thessalonians", "2th": "2 Thessalonians", "2 thess": "2 Thessalonians", "2thessalonians": "2 Thessalonians",
	"1 timothy": "1 Timothy", "1ti": "1 Timothy", "1 tim": "1 Timothy", "1tim": "1 Timothy",
	"2 timothy": "2 Timothy", "2ti": "2 Timothy", "2 tim": "2 Timothy", "2tim": "2 Timothy",
	"tit": "Titus", "titus": "Titus",
	"phm": "Philemon", "philemon": "Philemon",
	"heb": "Hebrews", "hebrews": "Hebrews",
	"jas": "James", "jm": "James", "james": "James",
	"1pe": "1 Peter", "1pet": "1 Peter", "1 peter": "1 Peter",
	"2pe": "2 Peter", "2pet": "2 Peter", "2 peter": "2 Peter",
	"1 john": "1 John", "1jo": "1 John", "1 jn": "1 John", "1john": "1 John",
	"2 john": "2 John", "2jo": "2 John", "2 jn": "2 John", "2john": "2 John",
	"3 john": "3 John", "3jo": "3 John", "3 jn": "3 John", "3john": "3 John",
	"jud": "Jude", "jude": "Jude",
	"rev": "Revelation", "re": "Revelation", "rv": "Revelation", "apocalypse": "Revelation", "revelation": "Revelation",
}
