package report

// Response schemas handed to the collaborator, one per report family. Every
// string-valued field is natural-language Korean. The summary block is
// echoed from the pre-computed anchors and overwritten locally after decode
// regardless of what comes back.

const searchSchema = `{
  "summary": {
    "totalCost": "string (formatted KRW)",
    "totalRevenue": "string (formatted KRW)",
    "totalRoas": "string (%)",
    "totalConversions": "string",
    "roasChange": "string (+/- %)",
    "costChange": "string (+/- %)"
  },
  "weeklyStats": [
    { "date": "string", "cost": number, "revenue": number, "roas": number, "clicks": number, "conversions": number }
  ],
  "campaignStats": [
    { "name": "string", "cost": number, "revenue": number, "roas": number, "clicks": number }
  ],
  "deviceStats": [
    { "device": "string", "placement": "string", "cost": number, "revenue": number, "roas": number, "clicks": number }
  ],
  "topKeywords": [
    { "keyword": "string", "cost": number, "revenue": number, "roas": number, "clicks": number, "conversions": number }
  ],
  "criticalIssues": ["string (구체적 문제를 길게 서술)"],
  "actionItems": ["string (구체적 실행 단계를 길게 서술)"],
  "insights": [
    { "title": "string", "description": "string", "severity": "high" | "medium" | "low" }
  ],
  "trendData": [
    { "name": "string (주차 날짜)", "value": number (revenue), "cost": number, "roas": number }
  ],
  "performanceByDevice": [
    { "name": "PC", "value": number },
    { "name": "Mobile", "value": number }
  ],
  "keywordOpportunities": ["string"],
  "negativeKeywords": ["string"]
}`

const gfaSchema = `{
  "summary": {
    "totalCost": "string (KRW)",
    "totalRevenue": "string (KRW)",
    "totalRoas": "string (%)",
    "totalConversions": "string",
    "roasChange": "string",
    "costChange": "string"
  },
  "funnelAnalysis": {
    "cpm": number,
    "ctr": number,
    "cpc": number,
    "cvr": number,
    "roas": number,
    "diagnosis": "string (퍼널 진단, 한국어)"
  },
  "trendData": [
    { "name": "string (날짜)", "value": number (revenue), "cost": number, "roas": number }
  ],
  "creativeStats": [
    { "creativeName": "string", "cost": number, "revenue": number, "roas": number, "clicks": number, "ctr": number, "conversions": number, "reach": number, "frequency": number }
  ],
  "audienceAgeStats": [
    { "segment": "string (예: 30-34)", "cost": number, "revenue": number, "roas": number, "clicks": number }
  ],
  "audienceMediaStats": [
    { "segment": "string (예: 스마트채널, Android)", "cost": number, "revenue": number, "roas": number, "clicks": number }
  ],
  "criticalIssues": ["string (이름, 지표, 문제를 구체적으로)"],
  "actionItems": ["string (이름, 액션, 근거를 구체적으로)"],
  "insights": [
    { "title": "string", "description": "string", "severity": "high" | "medium" | "low" }
  ]
}`
