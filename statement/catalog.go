// Verb and object vocabulary shared with the statement collector.

package statement

const (
	libraryVerbs   = "https://github.com/UCM-FDI-JaXpi/lib/"
	libraryObjects = "https://github.com/UCM-FDI-JaXpi/objects/"
	objectType     = "https://github.com/UCM-FDI-JaXpi/object"
)

// Catalog verbs.
var (
	VerbAccepted     = Verb{Key: "accepted", ID: libraryVerbs + "accepted", Display: LanguageMap{"en-US": "accepted", "es": "aceptado"}, Objects: []string{"achievement", "award", "mission", "reward", "task"}}
	VerbAccessed     = Verb{Key: "accessed", ID: libraryVerbs + "accessed", Display: LanguageMap{"en-US": "accessed", "es": "accedido"}, Objects: []string{"chest", "door", "room", "location"}}
	VerbAchieved     = Verb{Key: "achieved", ID: libraryVerbs + "achieved", Display: LanguageMap{"en-US": "achieved", "es": "logrado"}, Objects: []string{"achievement", "award", "game", "goal", "level", "reward"}}
	VerbCancelled    = Verb{Key: "cancelled", ID: libraryVerbs + "cancelled", Display: LanguageMap{"en-US": "cancelled", "es": "cancelado"}, Objects: []string{"mission", "task"}}
	VerbChatted      = Verb{Key: "chatted", ID: libraryVerbs + "chatted", Display: LanguageMap{"en-US": "chatted", "es": "charló"}, Objects: []string{"character"}}
	VerbClicked      = Verb{Key: "clicked", ID: libraryVerbs + "clicked", Display: LanguageMap{"en-US": "clicked", "es": "clicado"}, Objects: []string{"character", "item", "dialog", "door"}}
	VerbClimbed      = Verb{Key: "climbed", ID: libraryVerbs + "climbed", Display: LanguageMap{"en-US": "climbed", "es": "escalado"}, Objects: []string{"location"}}
	VerbClosed       = Verb{Key: "closed", ID: "https://w3id.org/xapi/adl/verbs/closed", Display: LanguageMap{"en-US": "closed", "es": "cerrado"}, Objects: []string{"chest", "door"}}
	VerbCombined     = Verb{Key: "combined", ID: libraryVerbs + "combined", Display: LanguageMap{"en-US": "combined", "es": "combinado"}, Objects: []string{"item"}}
	VerbCompleted    = Verb{Key: "completed", ID: libraryVerbs + "completed", Display: LanguageMap{"en-US": "completed", "es": "completado"}, Objects: []string{"achievement", "game", "goal", "level", "mission", "task"}}
	VerbConnected    = Verb{Key: "connected", ID: libraryVerbs + "connected", Display: LanguageMap{"en-US": "connected", "es": "conectado"}}
	VerbCrafted      = Verb{Key: "crafted", ID: libraryVerbs + "crafted", Display: LanguageMap{"en-US": "crafted", "es": "elaborado"}, Objects: []string{"item"}}
	VerbDashed       = Verb{Key: "dashed", ID: libraryVerbs + "dashed", Display: LanguageMap{"en-US": "dashed", "es": "dash"}, Objects: []string{"character"}}
	VerbDefeated     = Verb{Key: "defeated", ID: libraryVerbs + "defeated", Display: LanguageMap{"en-US": "defeated", "es": "derrotado"}, Objects: []string{"enemy"}}
	VerbDestroyed    = Verb{Key: "destroyed", ID: libraryVerbs + "destroyed", Display: LanguageMap{"en-US": "destroyed", "es": "destruido"}, Objects: []string{"item"}}
	VerbDied         = Verb{Key: "died", ID: libraryVerbs + "died", Display: LanguageMap{"en-US": "died", "es": "muerto"}, Objects: []string{"character", "location"}}
	VerbDiscovered   = Verb{Key: "discovered", ID: libraryVerbs + "discovered", Display: LanguageMap{"en-US": "discovered", "es": "descubierto"}, Objects: []string{"level", "location"}}
	VerbDoubleJumped = Verb{Key: "doubleJumped", ID: libraryVerbs + "double-jumped", Display: LanguageMap{"en-US": "double jumped", "es": "doble salto"}}
	VerbEarned       = Verb{Key: "earned", ID: libraryVerbs + "earned", Display: LanguageMap{"en-US": "earned", "es": "ganado"}, Objects: []string{"reward"}}
	VerbEquipped     = Verb{Key: "equipped", ID: libraryVerbs + "equipped", Display: LanguageMap{"en-US": "equipped", "es": "equipado"}, Objects: []string{"item"}}
	VerbExamined     = Verb{Key: "examined", ID: libraryVerbs + "examined", Display: LanguageMap{"en-US": "examined", "es": "examinado"}, Objects: []string{"item", "room"}}
	VerbExited       = Verb{Key: "exited", ID: libraryVerbs + "exited", Display: LanguageMap{"en-US": "exited", "es": "salió"}, Objects: []string{"game", "level"}}
	VerbExplored     = Verb{Key: "explored", ID: libraryVerbs + "explored", Display: LanguageMap{"en-US": "explored", "es": "explorado"}, Objects: []string{"location"}}
	VerbFailed       = Verb{Key: "failed", ID: libraryVerbs + "failed", Display: LanguageMap{"en-US": "failed", "es": "falló"}, Objects: []string{"mission", "task", "level"}}
	VerbFellIn       = Verb{Key: "fellIn", ID: libraryVerbs + "fellIn", Display: LanguageMap{"en-US": "fell in", "es": "cayó en"}, Objects: []string{"location"}}
	VerbJumped       = Verb{Key: "jumped", ID: libraryVerbs + "jumped", Display: LanguageMap{"en-US": "jumped", "es": "saltado"}, Objects: []string{"character", "enemy"}}
	VerbLaunched     = Verb{Key: "launched", ID: libraryVerbs + "launched", Display: LanguageMap{"en-US": "launched", "es": "ejecutado"}}
	VerbLoaded       = Verb{Key: "loaded", ID: libraryVerbs + "loaded", Display: LanguageMap{"en-US": "loaded", "es": "cargado"}, Objects: []string{"game", "level"}}
	VerbLoggedIn     = Verb{Key: "loggedIn", ID: libraryVerbs + "loggedIn", Display: LanguageMap{"en-US": "loggedIn", "es": "conectado"}, Objects: []string{"player"}}
	VerbLoggedOut    = Verb{Key: "loggedOut", ID: libraryVerbs + "loggedOut", Display: LanguageMap{"en-US": "loggedOut", "es": "desconectado"}, Objects: []string{"player"}}
	VerbMoved        = Verb{Key: "moved", ID: libraryVerbs + "moved", Display: LanguageMap{"en-US": "moved", "es": "movido"}, Objects: []string{"item"}}
	VerbNavigated    = Verb{Key: "navigated", ID: libraryVerbs + "navigated", Display: LanguageMap{"en-US": "navigated", "es": "navegado"}, Objects: []string{"location"}}
	VerbOpened       = Verb{Key: "opened", ID: libraryVerbs + "opened", Display: LanguageMap{"en-US": "opened", "es": "abierto"}, Objects: []string{"chest", "door"}}
	VerbOverloaded   = Verb{Key: "overloaded", ID: libraryVerbs + "overloaded", Display: LanguageMap{"en-US": "overloaded", "es": "sobrecargado"}, Objects: []string{"game", "level"}}
	VerbPaused       = Verb{Key: "paused", ID: libraryVerbs + "paused", Display: LanguageMap{"en-US": "paused", "es": "pausado"}, Objects: []string{"game"}}
	VerbRegistered   = Verb{Key: "registered", ID: libraryVerbs + "registered", Display: LanguageMap{"en-US": "registered", "es": "registrado"}}
	VerbRejected     = Verb{Key: "rejected", ID: libraryVerbs + "rejected", Display: LanguageMap{"en-US": "rejected", "es": "rechazado"}}
	VerbRotated      = Verb{Key: "rotated", ID: libraryVerbs + "rotated", Display: LanguageMap{"en-US": "rotated", "es": "rotado"}}
	VerbShared       = Verb{Key: "shared", ID: libraryVerbs + "shared", Display: LanguageMap{"en-US": "shared", "es": "compartido"}}
	VerbSkipped      = Verb{Key: "skipped", ID: libraryVerbs + "skipped", Display: LanguageMap{"en-US": "skipped", "es": "omitido"}, Objects: []string{"dialog"}}
	VerbSolved       = Verb{Key: "solved", ID: libraryVerbs + "solved", Display: LanguageMap{"en-US": "solved", "es": "resuelto"}}
	VerbSprinted     = Verb{Key: "sprinted", ID: libraryVerbs + "sprinted", Display: LanguageMap{"en-US": "sprinted", "es": "sprint"}}
	VerbStarted      = Verb{Key: "started", ID: libraryVerbs + "started", Display: LanguageMap{"en-US": "started", "es": "empezó"}, Objects: []string{"level", "game"}}
	VerbTeleported   = Verb{Key: "teleported", ID: libraryVerbs + "teleported", Display: LanguageMap{"en-US": "teleported to", "es": "teletransportado"}, Objects: []string{"location", "character"}}
	VerbUnlocked     = Verb{Key: "unlocked", ID: libraryVerbs + "unlocked", Display: LanguageMap{"en-US": "unlocked", "es": "desbloqueado"}, Objects: []string{"chest", "skill"}}
	VerbUpgraded     = Verb{Key: "upgraded", ID: libraryVerbs + "upgraded", Display: LanguageMap{"en-US": "upgraded", "es": "mejorado"}, Objects: []string{"item"}}
	VerbUsed         = Verb{Key: "used", ID: libraryVerbs + "used", Display: LanguageMap{"en-US": "used", "es": "utilizado"}, Objects: []string{"item"}}
	VerbWatched      = Verb{Key: "watched", ID: libraryVerbs + "watched", Display: LanguageMap{"en-US": "watched", "es": "visto"}}
)

// Catalog objects.
var (
	ObjectAchievement = Object{Key: "achievement", ID: libraryObjects + "achievement", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default achievement", "es": "Logro por defecto"}, Description: LanguageMap{"en-US": "A recognition or accomplishment gained by meeting certain criteria", "es": "Un reconocimiento o logro obtenido al cumplir ciertos criterios"}}}
	ObjectAward       = Object{Key: "award", ID: libraryObjects + "award", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default award", "es": "Premio por defecto"}, Description: LanguageMap{"en-US": "A prize or honor given to the player for an achievement", "es": "Un premio u honor otorgado al jugador por un logro"}}}
	ObjectCharacter   = Object{Key: "character", ID: libraryObjects + "character", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default character", "es": "Personaje por defecto"}, Description: LanguageMap{"en-US": "A persona or figure in the game", "es": "Una persona o figura en el juego"}}}
	ObjectChest       = Object{Key: "chest", ID: libraryObjects + "chest", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default chest", "es": "Cofre por defecto"}, Description: LanguageMap{"en-US": "A storage container, often used to hold items or rewards, it can require a key or mechanism to unlock", "es": "Un contenedor de almacenamiento, que a menudo se usa para guardar artículos o recompensas, puede requerir una llave o mecanismo para desbloquearlo"}}}
	ObjectDialog      = Object{Key: "dialog", ID: libraryObjects + "dialog", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default dialog", "es": "Dialogo por defecto"}, Description: LanguageMap{"en-US": "Conversation between characters in the game, or a text box in the game providing information or choices to the player", "es": "Conversación entre personajes del juego o un cuadro de texto en el juego que proporciona información u opciones al jugador"}}}
	ObjectDoor        = Object{Key: "door", ID: libraryObjects + "door", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default door", "es": "Puerta por defecto"}, Description: LanguageMap{"en-US": "A movable barrier used to close off an entrance or exit from a room, building, or vehicle", "es": "Una barrera móvil utilizada para cerrar una entrada o salida de una habitación, edificio o vehículo"}}}
	ObjectEnemy       = Object{Key: "enemy", ID: libraryObjects + "enemy", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default enemy", "es": "Enemigo por defecto"}, Description: LanguageMap{"en-US": "A hostile individual or group opposing the protagonist in the game", "es": "Un individuo o grupo hostil que se opone al protagonista del juego"}}}
	ObjectGame        = Object{Key: "game", ID: libraryObjects + "game", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default saved game", "es": "Juego guardado por defecto"}, Description: LanguageMap{"en-US": "A saved state or instance of a video game, representing progress made by the player", "es": "Un estado guardado o instancia de un videojuego, que representa el progreso realizado por el jugador"}}}
	ObjectGoal        = Object{Key: "goal", ID: libraryObjects + "goal", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default goal", "es": "Objetivo por defecto"}, Description: LanguageMap{"en-US": "An objective or target to be achieved, providing direction and motivation in the game", "es": "Un objetivo o meta a alcanzar, proporcionando dirección y motivación en el juego"}}}
	ObjectItem        = Object{Key: "item", ID: libraryObjects + "item", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default item", "es": "Objeto por defecto"}, Description: LanguageMap{"en-US": "An object or thing of value, often collectible or usable in the game", "es": "Un objeto o cosa de valor, a menudo coleccionable o utilizable en el juego"}}}
	ObjectLevel       = Object{Key: "level", ID: libraryObjects + "level", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default level", "es": "Nivel por defecto"}, Description: LanguageMap{"en-US": "A stage or section in the game", "es": "Una etapa o sección del juego"}}}
	ObjectLocation    = Object{Key: "location", ID: libraryObjects + "location", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default location", "es": "Lugar por defecto"}, Description: LanguageMap{"en-US": "A specific place or position relevant to the action of the game", "es": "Un lugar o posición específica relevante para la acción del juego"}}}
	ObjectMission     = Object{Key: "mission", ID: libraryObjects + "mission", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default mission", "es": "Misión por defecto"}, Description: LanguageMap{"en-US": "A specific task or objective", "es": "Una tarea u objetivo específico"}}}
	ObjectPlayer      = Object{Key: "player", ID: libraryObjects + "player", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Player who use Jaxpi", "es": "Jugador que usa Jaxpi"}, Description: LanguageMap{"en-US": "Player that connects to the server in wich the statement will be analized", "es": "Jugador que se conecta al servidor cuyas trazas seran analizadas"}}}
	ObjectReward      = Object{Key: "reward", ID: libraryObjects + "reward", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default reward", "es": "Recompensa por defecto"}, Description: LanguageMap{"en-US": "Something given in recognition of service, effort, or achievement; often used to incentivize desired behavior or completion of tasks of the player", "es": "Algo entregado en reconocimiento al servicio, esfuerzo o logro; A menudo se utiliza para incentivar el comportamiento deseado o la finalización de tareas del jugador"}}}
	ObjectRoom        = Object{Key: "room", ID: libraryObjects + "room", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default room", "es": "Habitación por defecto"}, Description: LanguageMap{"en-US": "A space within a building or structure like a house or a cave", "es": "Un espacio dentro de un edificio o estructura como una casa o una cueva"}}}
	ObjectSkill       = Object{Key: "skill", ID: libraryObjects + "skill", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default skill", "es": "Habilidad por defecto"}, Description: LanguageMap{"en-US": "A player's capability or expertise in executing particular actions, or a distinct move they can use in combat that either enhances their combat abilities or unlocks advancements in the game", "es": "La capacidad o experiencia de un jugador para ejecutar acciones particulares, o un movimiento distinto que puede usar en combate y que mejora sus habilidades de combate o desbloquea avances en el juego"}}}
	ObjectTask        = Object{Key: "task", ID: libraryObjects + "task", Definition: Definition{Type: objectType, Name: LanguageMap{"en-US": "Default task", "es": "Tarea por defecto"}, Description: LanguageMap{"en-US": "A piece of work to be done or undertaken, often part of a larger goal for the player", "es": "Un trabajo por hacer o emprender, a menudo parte de un objetivo más amplio para el jugador"}}}
)

var verbs = map[string]Verb{
	"accepted":     VerbAccepted,
	"accessed":     VerbAccessed,
	"achieved":     VerbAchieved,
	"cancelled":    VerbCancelled,
	"chatted":      VerbChatted,
	"clicked":      VerbClicked,
	"climbed":      VerbClimbed,
	"closed":       VerbClosed,
	"combined":     VerbCombined,
	"completed":    VerbCompleted,
	"connected":    VerbConnected,
	"crafted":      VerbCrafted,
	"dashed":       VerbDashed,
	"defeated":     VerbDefeated,
	"destroyed":    VerbDestroyed,
	"died":         VerbDied,
	"discovered":   VerbDiscovered,
	"doubleJumped": VerbDoubleJumped,
	"earned":       VerbEarned,
	"equipped":     VerbEquipped,
	"examined":     VerbExamined,
	"exited":       VerbExited,
	"explored":     VerbExplored,
	"failed":       VerbFailed,
	"fellIn":       VerbFellIn,
	"jumped":       VerbJumped,
	"launched":     VerbLaunched,
	"loaded":       VerbLoaded,
	"loggedIn":     VerbLoggedIn,
	"loggedOut":    VerbLoggedOut,
	"moved":        VerbMoved,
	"navigated":    VerbNavigated,
	"opened":       VerbOpened,
	"overloaded":   VerbOverloaded,
	"paused":       VerbPaused,
	"registered":   VerbRegistered,
	"rejected":     VerbRejected,
	"rotated":      VerbRotated,
	"shared":       VerbShared,
	"skipped":      VerbSkipped,
	"solved":       VerbSolved,
	"sprinted":     VerbSprinted,
	"started":      VerbStarted,
	"teleported":   VerbTeleported,
	"unlocked":     VerbUnlocked,
	"upgraded":     VerbUpgraded,
	"used":         VerbUsed,
	"watched":      VerbWatched,
}

var objects = map[string]Object{
	"achievement": ObjectAchievement,
	"award":       ObjectAward,
	"character":   ObjectCharacter,
	"chest":       ObjectChest,
	"dialog":      ObjectDialog,
	"door":        ObjectDoor,
	"enemy":       ObjectEnemy,
	"game":        ObjectGame,
	"goal":        ObjectGoal,
	"item":        ObjectItem,
	"level":       ObjectLevel,
	"location":    ObjectLocation,
	"mission":     ObjectMission,
	"player":      ObjectPlayer,
	"reward":      ObjectReward,
	"room":        ObjectRoom,
	"skill":       ObjectSkill,
	"task":        ObjectTask,
}
