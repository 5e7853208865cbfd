package checker

import (
	"strings"
)

// Messages shown by the database-task checker.
const (
	MsgEnterDatabaseCode = "Please enter code to check"
	MsgTypeMissing       = "Task type not found"
	MsgDatabaseCorrect   = "Great! The code is correct."
	MsgDatabaseErrors    = "The solution contains errors. Check:"
	LabelCorrectSolution = "Show correct solution"
)

// GenericDatabaseHints is shown when a submission fails only the keyword
// baseline.
var GenericDatabaseHints = []string{
	"Go syntax is correct",
	"All required constructs are used",
	"Method logic",
}

// Rule is a type-specific literal check with the message reported when it
// fails.
type Rule struct {
	Checker Checker
	Message string
}

// DatabaseTask is one step of the in-memory user database exercise.
type DatabaseTask struct {
	Type     string
	Title    string
	Keywords []string
	Rules    []Rule
	Solution string
}

// Check runs the keyword baseline and the rule battery. It returns whether
// every keyword was found and the messages of the failed rules.
func (t DatabaseTask) Check(code string) (bool, []string) {
	lower := strings.ToLower(code)
	hasKeywords := true
	for _, kw := range t.Keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			hasKeywords = false
			break
		}
	}

	var failed []string
	for _, rule := range t.Rules {
		if !rule.Checker.Check(code) {
			failed = append(failed, rule.Message)
		}
	}
	return hasKeywords, failed
}

// DatabaseTasks returns the database exercises indexed by type tag.
func DatabaseTasks() []DatabaseTask {
	return []DatabaseTask{
		{
			Type:     "struct",
			Title:    "Declare the User struct",
			Keywords: []string{"type", "struct", "ID", "Name", "Email", "Age"},
			Rules: []Rule{
				{Contains("type User struct"), `Declaration "type User struct" not found`},
				{Matches(`ID\s+int`), "Field ID must be of type int"},
			},
			Solution: `type User struct {
    ID    int
    Name  string
    Email string
    Age   int
}`,
		},
		{
			Type:     "database",
			Title:    "Declare the Database struct",
			Keywords: []string{"type Database struct", "Users", "NextID"},
			Rules: []Rule{
				{Contains("type Database struct"), `Declaration "type Database struct" not found`},
				{Contains("map[int]User"), "Field Users must be of type map[int]User"},
			},
			Solution: `type Database struct {
    Users  map[int]User
    NextID int
}

func NewDatabase() *Database {
    return &Database{
        Users:  make(map[int]User),
        NextID: 1,
    }
}`,
		},
		{
			Type:     "create",
			Title:    "Create a user",
			Keywords: []string{"func (db *Database)", "CreateUser", "db.Users[", "return"},
			Rules: []Rule{
				{Contains("func (db *Database)"), "The method must belong to the Database type"},
				{Contains("db.NextID++"), "Increment NextID after adding a user"},
			},
			Solution: `func (db *Database) CreateUser(name, email string, age int) User {
    user := User{
        ID:    db.NextID,
        Name:  name,
        Email: email,
        Age:   age,
    }
    db.Users[user.ID] = user
    db.NextID++
    return user
}`,
		},
		{
			Type:     "read",
			Title:    "Read a user",
			Keywords: []string{"GetUser", "db.Users[", "return"},
			Rules: []Rule{
				{Any(Contains(", exists :="), Contains(",exists:=")), "Check that the key exists in the map"},
			},
			Solution: `func (db *Database) GetUser(id int) (User, error) {
    user, exists := db.Users[id]
    if !exists {
        return User{}, fmt.Errorf("user with ID %d not found", id)
    }
    return user, nil
}`,
		},
		{
			Type:     "update",
			Title:    "Update a user",
			Keywords: []string{"UpdateUser", "db.Users[", "exists"},
			Rules: []Rule{
				{Matches(`db\.Users\[id\]\s*=`), "Store the modified user back into the map"},
			},
			Solution: `func (db *Database) UpdateUser(id int, name, email string, age int) error {
    user, exists := db.Users[id]
    if !exists {
        return fmt.Errorf("user with ID %d not found", id)
    }
    user.Name = name
    user.Email = email
    user.Age = age
    db.Users[id] = user
    return nil
}`,
		},
		{
			Type:     "delete",
			Title:    "Delete a user",
			Keywords: []string{"DeleteUser", "exists", "delete("},
			Rules: []Rule{
				{Contains("delete("), "Use delete() to remove an entry from the map"},
			},
			Solution: `func (db *Database) DeleteUser(id int) error {
    if _, exists := db.Users[id]; !exists {
        return fmt.Errorf("user with ID %d not found", id)
    }
    delete(db.Users, id)
    return nil
}`,
		},
		{
			Type:     "search",
			Title:    "Find users by age",
			Keywords: []string{"FindUsersByAge", "range", "append"},
			Rules: []Rule{
				{Contains("range db.Users"), "Use a range loop over the users"},
				{Contains("append("), "Use append() to add to the slice"},
			},
			Solution: `func (db *Database) FindUsersByAge(minAge, maxAge int) []User {
    var result []User
    for _, user := range db.Users {
        if user.Age >= minAge && user.Age <= maxAge {
            result = append(result, user)
        }
    }
    return result
}`,
		},
		{
			Type:     "stats",
			Title:    "Average user age",
			Keywords: []string{"AverageAge", "float64", "len("},
			Rules: []Rule{
				{Contains("float64("), "The result must be a float64"},
				{Contains("len(db.Users)"), "Guard against division by zero with len()"},
			},
			Solution: `func (db *Database) AverageAge() float64 {
    if len(db.Users) == 0 {
        return 0
    }
    total := 0
    for _, user := range db.Users {
        total += user.Age
    }
    return float64(total) / float64(len(db.Users))
}`,
		},
	}
}
