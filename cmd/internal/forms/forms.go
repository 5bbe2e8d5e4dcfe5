// Package forms holds the input schemas of every user-facing form and the
// validator that checks them, reporting all invalid fields at once.
package forms

// Specialties offered by the reminder form's specialty picker.
var Specialties = []string{
	"Cardiologia",
	"Neurologia",
	"Oftalmologia",
	"Ortopedia",
	"Pediatria",
	"Psiquiatria",
	"Dermatologia",
	"Ginecologia",
	"Urologia",
	"Endocrinologia",
}

// ReminderForm is the input of reminder creation and edition. Title is
// optional; the store derives it from DoctorName when empty.
type ReminderForm struct {
	Title      string `form:"title" validate:"max=150"`
	DoctorName string `form:"doctorName" validate:"required,min=2,max=100"`
	Specialty  string `form:"specialty" validate:"required,specialty"`
	Date       string `form:"date" validate:"required,isodate,notpast"`
	Time       string `form:"time" validate:"required,clocktime"`
	Location   string `form:"location" validate:"required,min=5,max=200"`
	Notes      string `form:"notes" validate:"max=500"`
}

type RegisterForm struct {
	Name            string `json:"nome" form:"name" validate:"required,min=3,max=100"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"senha" form:"password" validate:"required,min=6,max=64"`
	ConfirmPassword string `json:"confirmarSenha" form:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"senha" form:"password" validate:"required"`
}

type ConfirmForm struct {
	Email string `json:"email" form:"email" validate:"required,email"`
	Code  string `json:"codigo" form:"code" validate:"required,min=1,max=6"`
}

type ContactForm struct {
	Name    string  `json:"nome" form:"name" validate:"required,min=2,max=100"`
	Email   string  `json:"email" form:"email" validate:"required,email"`
	Phone   *string `json:"telefone" form:"phone" validate:"omitempty,phone"`
	Subject string  `json:"assunto" form:"subject" validate:"required,oneof=suporte acessibilidade sugestao bug outros"`
	Message string  `json:"mensagem" form:"message" validate:"required,min=10,max=1000"`
}

// SettingsForm is a partial update: nil fields keep their stored value.
type SettingsForm struct {
	FontSize       *int     `json:"fontSize" form:"fontSize" validate:"omitempty,min=80,max=140"`
	LineHeight     *float64 `json:"lineHeight" form:"lineHeight" validate:"omitempty,gte=1.2,lte=1.8"`
	HighContrast   *bool    `json:"highContrast" form:"highContrast"`
	SimplifiedMode *bool    `json:"simplifiedMode" form:"simplifiedMode"`
}

type DirectorySearch struct {
	Term string `query:"q" form:"searchTerm" validate:"max=100"`
}
