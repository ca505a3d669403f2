package agent

// Canonical question intents. Each intent saturates after being asked
// twice; "generic" is exempt so small talk never deadlocks.
const (
	intentIdentity  = "identity_verification"
	intentPayment   = "payment_method"
	intentNextStep  = "next_action_step"
	intentContact   = "contact_method"
	intentDelay     = "delay_excuse"
	intentAccount   = "account_details"
	intentAppOrLink = "app_or_link"
	intentGeneric   = "generic"
	intentSignoff   = "signoff"
	intentDeflect   = "deflection"
)

// candidate pairs a reply with its canonical intent for anti-loop
// bookkeeping.
type candidate struct {
	text   string
	intent string
}

// Pre-detection pools: confused clarification. One short sentence, never
// accusatory, never technical.
var preDetectionEnglish = []candidate{
	{"Sorry, who is this?", intentIdentity},
	{"I don't understand, what happened?", intentGeneric},
	{"Which account are you talking about?", intentAccount},
	{"How did you get my number?", intentContact},
	{"What is this about?", intentGeneric},
	{"Is something wrong with my phone?", intentGeneric},
}

var preDetectionHindi = []candidate{
	{"Sorry, aap kaun bol rahe ho?", intentIdentity},
	{"Mujhe samajh nahi aaya, kya hua?", intentGeneric},
	{"Kaunse account ki baat kar rahe ho?", intentAccount},
	{"Aapko mera number kahan se mila?", intentContact},
	{"Ye kis baare mein hai?", intentGeneric},
}

// Post-detection pools: engaged but slow. Process questions and mild
// concern that keep the scammer talking without ever complying.
var postDetectionEnglish = []candidate{
	{"Okay, what do I need to do?", intentNextStep},
	{"How much time will this take?", intentDelay},
	{"Which app are you talking about?", intentAppOrLink},
	{"What happens after that?", intentNextStep},
	{"How do I make the payment?", intentPayment},
	{"Is this really safe?", intentGeneric},
	{"Can you explain the steps again?", intentNextStep},
	{"Who should I ask for if I call back?", intentContact},
}

var postDetectionHindi = []candidate{
	{"Theek hai, mujhe kya karna hoga?", intentNextStep},
	{"Kitna time lagega isme?", intentDelay},
	{"Kaunsa app bol rahe ho?", intentAppOrLink},
	{"Uske baad kya hoga?", intentNextStep},
	{"Payment kaise karni hogi?", intentPayment},
	{"Ye safe hai na?", intentGeneric},
	{"Phir se steps batao please?", intentNextStep},
}

// Sign-offs close the engagement without tipping the persona's hand.
var signoffEnglish = []string{
	"Okay, I will check and call you back later.",
	"I have to go now, we will talk later.",
	"Someone is at the door, I will message you later.",
}

var signoffHindi = []string{
	"Theek hai, main check karke baad mein baat karti hoon.",
	"Abhi thoda busy hoon, baad mein baat karte hai.",
	"Koi aaya hai ghar pe, baad mein message karti hoon.",
}

// Minimal acknowledgments for when every question candidate is blocked.
const (
	minimalAckEnglish = "Then?"
	minimalAckHindi   = "Phir?"
)
